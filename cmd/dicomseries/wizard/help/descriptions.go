package help

// HelpText contains information about a field
type HelpText struct {
	Title       string
	Description string
	Details     string
}

// Field keys, in registry column order.
var Fields = []string{
	"property_type",
	"property_category",
	"property_type_modifiers",
	"anatomic_region",
	"anatomic_region_modifiers",
}

// Texts contains help information for the coded fields of a registry entry
var Texts = map[string]HelpText{
	"property_type": {
		Title:       "PROPERTY TYPE",
		Description: "What the segment is.",
		Details: `Segmented Property Type Code Sequence (0062,000F).
One group: (CodeValue;CodingScheme;CodeMeaning)
Example: (T-62000;SRT;Liver)`,
	},
	"property_category": {
		Title:       "PROPERTY CATEGORY",
		Description: "The general class of the segment.",
		Details: `Segmented Property Category Code Sequence (0062,0003).
One group, e.g. (T-D000A;SRT;Anatomical Structure)`,
	},
	"property_type_modifiers": {
		Title:       "TYPE MODIFIERS",
		Description: "Qualifiers of the property type, such as laterality.",
		Details: `Segmented Property Type Modifier Code Sequence (0062,0011).
Zero or more groups, e.g. (G-A101;SRT;Left)(G-A105;SRT;Anterior)`,
	},
	"anatomic_region": {
		Title:       "ANATOMIC REGION",
		Description: "Where the segment is located.",
		Details: `Anatomic Region Sequence (0008,2218).
At most one group, e.g. (T-71000;SRT;Kidney)`,
	},
	"anatomic_region_modifiers": {
		Title:       "REGION MODIFIERS",
		Description: "Qualifiers of the anatomic region.",
		Details: `Anatomic Region Modifier Sequence (0008,2220).
Zero or more groups, e.g. (G-A101;SRT;Left)`,
	},
}
