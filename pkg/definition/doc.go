// Package definition loads form definitions from YAML or JSON files so suites
// and the domino CLI can share them without Go code. A file holds a map of
// named forms; fields are a list so declaration order is preserved:
//
//	forms:
//	  person:
//	    selector: form.person
//	    key: person
//	    submit: "input[name='commit']"
//	    fields:
//	      - name: name
//	        at: First Name
//	      - name: age
//	        at: person_age
//	        convert: int
//	      - name: vehicles
//	        at: Vehicles
//	        as: select
//	        multiple: true
//
// Converters are referenced by name (see form.ConverterByName) and types by
// registry tag.
package definition
