// Package definition loads form definitions from YAML or JSON documents and
// converts them into form.Config values ready to be bound on a coordinator.
//
// A document lists its forms under a top-level "forms" key:
//
//	forms:
//	  - name: profile
//	    fields:
//	      - name: email
//	        type: string
//	        required: true
//	        validations:
//	          - kind: maxLength
//	            params: {value: "64"}
//	  - name: addresses
//	    repeatable: true
//	    fields:
//	      - name: city
//	        type: string
package definition
