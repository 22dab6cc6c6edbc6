package distill

import "iter"

// Record maps property ids to values for one matched object root.
// Keys keep the order in which they were first set, which is template
// declaration order when built by an Extractor.
type Record struct {
	keys   []string
	values map[string]Value
}

// NewRecord returns an empty record with room for n properties.
func NewRecord(n int) *Record {
	return &Record{
		keys:   make([]string, 0, n),
		values: make(map[string]Value, n),
	}
}

// Set stores v under id. Setting an existing id replaces its value and
// keeps its original position.
func (r *Record) Set(id string, v Value) {
	if r.values == nil {
		r.values = make(map[string]Value)
	}
	if _, ok := r.values[id]; !ok {
		r.keys = append(r.keys, id)
	}
	r.values[id] = v
}

// Get returns the value stored under id.
func (r *Record) Get(id string) (Value, bool) {
	v, ok := r.values[id]
	return v, ok
}

// Len returns the number of properties in the record.
func (r *Record) Len() int {
	return len(r.keys)
}

// Keys returns the property ids in order.
func (r *Record) Keys() []string {
	keys := make([]string, len(r.keys))
	copy(keys, r.keys)
	return keys
}

// All iterates over the record's properties in order.
func (r *Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, k := range r.keys {
			if !yield(k, r.values[k]) {
				return
			}
		}
	}
}

// First returns the first property value.
// Returns false if the record is empty.
func (r *Record) First() (Value, bool) {
	if len(r.keys) == 0 {
		return Value{}, false
	}
	return r.values[r.keys[0]], true
}

// ExtractedObject holds the records found for one object template.
type ExtractedObject struct {
	ObjectID string
	Records  []*Record
}

// Result is the outcome of applying a template to a document: one
// ExtractedObject per object template, in template order.
type Result []*ExtractedObject

// RecordCount returns the total number of records across all objects.
func (r Result) RecordCount() int {
	var n int
	for _, obj := range r {
		n += len(obj.Records)
	}
	return n
}

// Extractor applies templates to HTML documents.
type Extractor interface {
	// Extract parses html and returns one ExtractedObject per template.
	// Returns ESELECTOR if any object or property selector fails to compile;
	// no partial result is returned in that case.
	Extract(html string, objects []ObjectTemplate) (Result, error)
}
