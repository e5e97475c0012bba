// Package snapshot reads cohort identification configurations from HCL
// files, so reports can be produced from an exported catalogue without a
// live database connection.
//
// A snapshot file holds any number of `cohort` blocks:
//
//	cohort "Diabetics" {
//	  description = "Diabetics over 50"
//
//	  container "UNION" {
//	    aggregate "AgeFilter" {
//	      filter_container {
//	        operation = "AND"
//	        filter "Age > 50" {}
//	      }
//	    }
//	    container "EXCEPT" {
//	      aggregate "Type1" {}
//	      aggregate "Deceased" {}
//	    }
//	  }
//
//	  joinable "Prescriptions" {}
//	}
//
// `container` and `aggregate` blocks may be interleaved; their order in the
// file is the order of the container's contents.
package snapshot
