// Package schema turns JSON/YAML-shaped data produced by the flow editor into domain values.
//
// Rule sets are accepted as data, never as code, and decoding is deliberately lenient:
// a rule that is not an object, has mistyped fields, or names an unknown condition kind
// is kept in place as a rule whose condition is domain.Unsupported, so it never matches
// and never aborts evaluation.
//
// Flow files are either JSON or YAML documents with a top-level "nodes" list:
//
//	nodes:
//	  - id: start
//	    type: start
//	    command: /start
//	    text: "Welcome, {first_name}!"
//	    conditions:
//	      rules:
//	        - id: returning
//	          kind: exists
//	          variableNames: [city]
//	          messageTemplate: "Welcome back! Still in {city}?"
//
// Node-level fields are strict; rule data inside "conditions" is lenient.
package schema
