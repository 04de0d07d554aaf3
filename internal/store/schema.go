package store

// Snapshot columns are TEXT: every attribute is persisted in its
// stringified form so the comparison policy survives a round trip.
// Identity pairs carry no uniqueness constraint; the reconciliation
// engine enforces at-most-one-row-per-key itself.
const schema = `
CREATE TABLE IF NOT EXISTS ec2 (
    accountname TEXT,
    accountid TEXT,
    instanceid TEXT,
    instancename TEXT,
    instancetype TEXT,
    state TEXT,
    privateip TEXT,
    publicip TEXT,
    vpcid TEXT,
    subnetid TEXT,
    availabilityzone TEXT,
    region TEXT,
    tags TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS rds (
    accountname TEXT,
    accountid TEXT,
    dbinstanceid TEXT,
    dbname TEXT,
    enginetype TEXT,
    engineversion TEXT,
    storagesize TEXT,
    instancetype TEXT,
    status TEXT,
    region TEXT,
    endpoint TEXT,
    port TEXT,
    hasreplica TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS redshift (
    accountname TEXT,
    accountid TEXT,
    clusterid TEXT,
    nodetype TEXT,
    numberofnodes TEXT,
    dbname TEXT,
    status TEXT,
    endpoint TEXT,
    port TEXT,
    region TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS vpc (
    accountname TEXT,
    accountid TEXT,
    vpcid TEXT,
    vpcname TEXT,
    cidrblock TEXT,
    state TEXT,
    isdefault TEXT,
    instancetenancy TEXT,
    region TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS subnets (
    accountname TEXT,
    accountid TEXT,
    subnetid TEXT,
    vpcid TEXT,
    cidrblock TEXT,
    availabilityzone TEXT,
    state TEXT,
    availableips TEXT,
    mappublicip TEXT,
    region TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS eks (
    accountname TEXT,
    accountid TEXT,
    clusterid TEXT,
    clustername TEXT,
    status TEXT,
    kubernetesversion TEXT,
    provider TEXT,
    clustersecuritygroup TEXT,
    supportperiod TEXT,
    addons TEXT,
    tags TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS lambda_functions (
    accountname TEXT,
    accountid TEXT,
    functionid TEXT,
    functionname TEXT,
    description TEXT,
    handler TEXT,
    runtime TEXT,
    memorysize TEXT,
    timeout TEXT,
    role TEXT,
    environment TEXT,
    triggers TEXT,
    vpcconfig TEXT,
    region TEXT,
    tags TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS athena (
    account_name TEXT,
    account_id TEXT,
    query_id TEXT,
    query_name TEXT,
    domain TEXT,
    description TEXT,
    database_name TEXT,
    tables_used TEXT,
    execution_duration TEXT,
    execution_frequency TEXT,
    owner TEXT,
    region TEXT,
    last_updated TEXT
);

CREATE TABLE IF NOT EXISTS change_log (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    resource_type TEXT NOT NULL,
    resource_id TEXT NOT NULL,
    field_name TEXT NOT NULL,
    old_value TEXT,
    new_value TEXT,
    changed_by TEXT,
    account_id TEXT,
    region TEXT,
    changed_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_change_log_resource ON change_log(resource_type, resource_id);
` + eventsSchema

// eventsSchema is separate so the events table can also be created
// lazily by InsertEvents when a run persists audit events before the
// full schema has ever been bootstrapped.
const eventsSchema = `
CREATE TABLE IF NOT EXISTS cloudtrail_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id TEXT UNIQUE,
    event_time TEXT,
    event_name TEXT,
    event_source TEXT,
    user_name TEXT,
    resource_name TEXT,
    resource_type TEXT,
    region TEXT,
    changes TEXT,
    created_at TEXT
);

CREATE INDEX IF NOT EXISTS idx_events_resource ON cloudtrail_events(resource_type, resource_name);
CREATE INDEX IF NOT EXISTS idx_events_time ON cloudtrail_events(event_time);
`
