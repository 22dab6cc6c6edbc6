// Package distill turns HTML documents into typed records. A template names
// the objects to locate with CSS selectors; each object carries properties
// with their own selectors, a value source and a target type. Extraction
// yields one record per matched object root.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, yaml/, sqlite/).
package distill
