package definition

// FormConfig is one form entry of a definition file.
type FormConfig struct {
	Selector string        `json:"selector" yaml:"selector"`
	Key      string        `json:"key,omitempty" yaml:"key,omitempty"`
	Submit   string        `json:"submit,omitempty" yaml:"submit,omitempty"`
	Fields   []FieldConfig `json:"fields" yaml:"fields"`
}

// FieldConfig declares one field.
type FieldConfig struct {
	Name     string `json:"name" yaml:"name"`
	At       string `json:"at,omitempty" yaml:"at,omitempty"`
	As       string `json:"as,omitempty" yaml:"as,omitempty"`
	Multiple bool   `json:"multiple,omitempty" yaml:"multiple,omitempty"`
	Convert  string `json:"convert,omitempty" yaml:"convert,omitempty"`
}

type documentFile struct {
	Forms map[string]FormConfig `json:"forms" yaml:"forms"`
}
