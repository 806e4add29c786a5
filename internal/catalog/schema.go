package catalog

import "github.com/invopop/jsonschema"

// DescriptorDocument models the JSON contract for one designer-authored
// modifier definition. It is shared with cmd/schemagen so a machine-readable
// schema can be produced for validation and editor tooling.
type DescriptorDocument struct {
	Key       string   `json:"key" jsonschema:"title=Modifier key,pattern=^[a-z0-9_]+$,description=Stable identifier used on items and in click round-trips"`
	Label     string   `json:"label,omitempty" jsonschema:"title=Display label,description=Human readable name shown on modifier tiles"`
	Cap       int      `json:"cap" jsonschema:"title=Baseline level cap,minimum=1"`
	Treasure  bool     `json:"treasure,omitempty" jsonschema:"description=Requires the treasure policy flag and permission"`
	Cursed    bool     `json:"cursed,omitempty" jsonschema:"description=Requires the cursed policy flag and permission"`
	Applies   []string `json:"applies,omitempty" jsonschema:"description=Item classes the modifier attaches to; empty means all"`
	Conflicts []string `json:"conflicts,omitempty" jsonschema:"description=Keys of mutually exclusive modifiers; symmetry is normalized at load"`
}

// FileDefinitions represents the contents of config/modifiers/definitions.json.
type FileDefinitions []DescriptorDocument

// Schema reflects the catalog document contract into a JSON schema.
func Schema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		DoNotReference:             true,
	}
	schema := reflector.Reflect(new(FileDefinitions))
	schema.Title = "Itemforge Modifier Catalog"
	schema.Description = "Validates designer-authored entries in config/modifiers/definitions.json"
	return schema
}
