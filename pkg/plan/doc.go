// Package plan defines the data shared between the submission controller,
// the event channel and the experience widgets:
//   - State: the controller's lifecycle position
//   - Input and Payload: raw questionnaire fields and their validated form
//   - ValidationResult: field-scoped validation outcome
//   - Plan and Bundle: the primary and secondary call results
//   - ResolvedError: the single error shape every failure path resolves to
//
// Values in this package are plain data. Plan and Bundle slices are copied
// with Clone/CloneBundles whenever they cross an ownership boundary so that
// no two components alias the same backing array.
package plan
