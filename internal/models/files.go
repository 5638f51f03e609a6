package models

// FileInfo contains metadata about an input CSV file in the data directory
type FileInfo struct {
	Name         string `json:"name"`
	Path         string `json:"path"`
	Size         int64  `json:"size"`
	Enabled      bool   `json:"enabled"`
	Transactions int    `json:"transactions"`
	Encrypted    bool   `json:"encrypted"`
}
