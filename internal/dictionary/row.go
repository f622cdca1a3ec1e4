package dictionary

// Kind tells whether a row describes an output column or an input parameter.
type Kind string

const (
	KindAttribute Kind = "Attribute"
	KindParameter Kind = "Parameter"
)

// Mapping describes how a column is populated from its source.
type Mapping string

const (
	MappingDirect Mapping = "Direct"
	MappingNone   Mapping = NotApplicable
)

// NotApplicable fills every field that has no meaning for a row.
const NotApplicable = "N/A"

// Row is one data dictionary entry.
type Row struct {
	TechnicalName   string  `json:"technical_name" yaml:"technical_name"`
	FieldLabel      string  `json:"field_label" yaml:"field_label"`
	SourceTableView string  `json:"source_table_view" yaml:"source_table_view"`
	SourceFieldName string  `json:"source_field_name" yaml:"source_field_name"`
	Kind            Kind    `json:"kind" yaml:"kind"`
	Mapping         Mapping `json:"mapping" yaml:"mapping"`
	DataType        string  `json:"data_type" yaml:"data_type"`
	Logic           string  `json:"logic" yaml:"logic"`
}

// Header returns the column labels used by every tabular export, in field order.
func Header() []string {
	return []string{
		"Technical Name",
		"Field Label",
		"Source Table/View",
		"Source Field Name",
		"Attribute/ Measure",
		"Direct/ Calculation",
		"Data Type",
		"Logic",
	}
}

// Record returns the row's values in Header order.
func (r Row) Record() []string {
	return []string{
		r.TechnicalName,
		r.FieldLabel,
		r.SourceTableView,
		r.SourceFieldName,
		string(r.Kind),
		string(r.Mapping),
		r.DataType,
		r.Logic,
	}
}

// Summary counts rows per kind.
type Summary struct {
	Parameters int `json:"parameters"`
	Attributes int `json:"attributes"`
}

// Total is the number of rows summarised.
func (s Summary) Total() int { return s.Parameters + s.Attributes }

// Summarize counts the parameter and attribute rows in rows.
func Summarize(rows []Row) Summary {
	var s Summary
	for _, r := range rows {
		switch r.Kind {
		case KindParameter:
			s.Parameters++
		case KindAttribute:
			s.Attributes++
		}
	}
	return s
}
