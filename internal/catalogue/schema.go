package catalogue

// Catalogue tables and columns read by the store.
const (
	tableConfiguration      = "CohortIdentificationConfiguration"
	tableContainer          = "CohortAggregateContainer"
	tableSubContainer       = "CohortAggregateSubContainer"
	tableContainerAggregate = "CohortAggregateContainer_AggregateConfiguration"
	tableAggregate          = "AggregateConfiguration"
	tableFilterContainer    = "AggregateFilterContainer"
	tableFilterSubContainer = "AggregateFilterSubContainer"
	tableFilter             = "AggregateFilter"
	tableJoinable           = "JoinableCohortAggregateConfiguration"
	columnOrder             = "Order"
	columnRootContainerID   = "RootCohortAggregateContainer_ID"
	columnRootFilterID      = "RootFilterContainer_ID"
	columnContainerParentID = "CohortAggregateContainer_ParentID"
	columnContainerChildID  = "CohortAggregateContainer_ChildID"
	columnFilterParentID    = "AggregateFilterContainer_ParentID"
	columnFilterChildID     = "AggregateFilterContainerChild_ID"
	columnFilterContainerID = "FilterContainer_ID"
	columnContainerID       = "CohortAggregateContainer_ID"
	columnAggregateID       = "AggregateConfiguration_ID"
	columnConfigurationID   = "CohortIdentificationConfiguration_ID"
)

// SQLiteSchema creates the subset of the catalogue schema the store reads.
// It is used to build file-based catalogues and test fixtures.
const SQLiteSchema = `
CREATE TABLE CohortIdentificationConfiguration (
	ID INTEGER PRIMARY KEY,
	Name TEXT NOT NULL,
	Description TEXT,
	RootCohortAggregateContainer_ID INTEGER
);
CREATE TABLE CohortAggregateContainer (
	ID INTEGER PRIMARY KEY,
	Name TEXT NOT NULL,
	"Order" INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE CohortAggregateSubContainer (
	CohortAggregateContainer_ParentID INTEGER NOT NULL,
	CohortAggregateContainer_ChildID INTEGER NOT NULL
);
CREATE TABLE CohortAggregateContainer_AggregateConfiguration (
	CohortAggregateContainer_ID INTEGER NOT NULL,
	AggregateConfiguration_ID INTEGER NOT NULL,
	"Order" INTEGER NOT NULL DEFAULT 0
);
CREATE TABLE AggregateConfiguration (
	ID INTEGER PRIMARY KEY,
	Name TEXT NOT NULL,
	RootFilterContainer_ID INTEGER
);
CREATE TABLE AggregateFilterContainer (
	ID INTEGER PRIMARY KEY,
	Operation TEXT NOT NULL
);
CREATE TABLE AggregateFilterSubContainer (
	AggregateFilterContainer_ParentID INTEGER NOT NULL,
	AggregateFilterContainerChild_ID INTEGER NOT NULL
);
CREATE TABLE AggregateFilter (
	ID INTEGER PRIMARY KEY,
	Name TEXT NOT NULL,
	FilterContainer_ID INTEGER
);
CREATE TABLE JoinableCohortAggregateConfiguration (
	ID INTEGER PRIMARY KEY,
	CohortIdentificationConfiguration_ID INTEGER NOT NULL,
	AggregateConfiguration_ID INTEGER NOT NULL
);
`
