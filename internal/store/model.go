package store

// Run groups the queries compiled from one configuration directory.
type Run struct {
	ID        string   `json:"id"`
	ConfigDir string   `json:"config_dir"`
	Tables    []string `json:"tables"`
}

// CompiledQuery is one rendered query in the log. ID and Seq are assigned
// by RecordQuery.
type CompiledQuery struct {
	ID      string `json:"id"`
	RunID   string `json:"run_id"`
	Seq     int64  `json:"seq"`
	Table   string `json:"table"`
	Kind    string `json:"kind"`
	Layer   string `json:"layer"`
	Dialect string `json:"dialect"`
	SQL     string `json:"sql"`
}
