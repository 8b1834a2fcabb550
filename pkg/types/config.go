package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "omics-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ArchiveConfig holds settings for the archive search stage.
type ArchiveConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// MaxResults is the maximum number of file records to return (default 100).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`

	// EnableGDC controls whether the GDC API backend is used.
	EnableGDC bool `json:"enable_gdc" yaml:"enable_gdc" mapstructure:"enable_gdc"`

	// ManifestPath points at a local manifest TSV; when set the manifest
	// backend is enabled alongside any API backends.
	ManifestPath string `json:"manifest_path,omitempty" yaml:"manifest_path,omitempty" mapstructure:"manifest_path"`

	// Token is an optional archive access token for controlled-access queries.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
}

// AcquisitionConfig holds settings for the acquisition stage.
type AcquisitionConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// DownloadDelay is the delay between consecutive downloads (default 1s).
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay" mapstructure:"download_delay"`

	// DataDir is the base directory for data (contains raw/, csv/, metadata/, combined/).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// Token is an optional bearer token for controlled-access downloads.
	Token string `json:"token,omitempty" yaml:"token,omitempty" mapstructure:"token"`
}

// ConversionBackend identifies the raw-text parsing strategy.
type ConversionBackend string

const (
	BackendBiotab    ConversionBackend = "biotab"
	BackendDelimited ConversionBackend = "delimited"
)

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects the parser: biotab or delimited.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// DataDir is the base directory for data (contains raw/, csv/, metadata/).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// JoinMode controls how row concatenation handles differing column sets.
type JoinMode string

const (
	JoinUnion     JoinMode = "union"
	JoinIntersect JoinMode = "intersect"
)

// MergeConfig holds settings for the merge stage.
type MergeConfig struct {
	// DataDir is the base directory for data (contains csv/, combined/, metadata/).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// Join selects union or intersect column handling for row concatenation.
	Join JoinMode `json:"join" yaml:"join" mapstructure:"join"`

	// ExpectedRows and ExpectedCols, when non-zero, are validated against the
	// combined output shape. The published TCGA-OV artifact is 234454 x 272.
	ExpectedRows int `json:"expected_rows,omitempty" yaml:"expected_rows,omitempty" mapstructure:"expected_rows"`
	ExpectedCols int `json:"expected_cols,omitempty" yaml:"expected_cols,omitempty" mapstructure:"expected_cols"`

	// OutputName is the combined CSV file name (default biomedical_clinical_data.csv).
	OutputName string `json:"output_name,omitempty" yaml:"output_name,omitempty" mapstructure:"output_name"`
}

// ProfileConfig holds settings for the column-profiling stage.
type ProfileConfig struct {
	// DataDir is the base directory for data (contains csv/, metadata/).
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`

	// CatalogDir is the base directory for catalog output (contains profiles/).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir" mapstructure:"catalog_dir"`

	// MaxExamples caps the example values recorded per column (default 5).
	MaxExamples int `json:"max_examples" yaml:"max_examples" mapstructure:"max_examples"`
}

// CatalogConfig holds settings for the catalog stage.
type CatalogConfig struct {
	// CatalogDir is the base directory for the catalog (contains profiles/, index/).
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir" mapstructure:"catalog_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// PipelineConfig groups all stage configurations for the pipeline.
type PipelineConfig struct {
	Archive     ArchiveConfig     `json:"archive" yaml:"archive" mapstructure:"archive"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition" mapstructure:"acquisition"`
	Conversion  ConversionConfig  `json:"conversion" yaml:"conversion" mapstructure:"conversion"`
	Merge       MergeConfig       `json:"merge" yaml:"merge" mapstructure:"merge"`
	Profile     ProfileConfig     `json:"profile" yaml:"profile" mapstructure:"profile"`
	Catalog     CatalogConfig     `json:"catalog" yaml:"catalog" mapstructure:"catalog"`
}
