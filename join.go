// Package solrq provides a Go query builder for Apache Solr
package solrq

// Join represents a Solr {!join} clause correlating documents by matching
// values of the from field against the to field, optionally reading the from
// side out of another collection (fromIndex).
//
// A Join is immutable once built. The zero value is not a complete join; use
// NewJoin, NewJoinWithIndex or a JoinBuilder to obtain one.
type Join struct {
	from      Field
	to        Field
	fromIndex Field
}

// NewJoin creates a join between two fields of the same collection
func NewJoin(from, to Field) (Join, error) {
	return JoinFrom(from).To(to)
}

// NewJoinWithIndex creates a join reading the from field out of fromIndex
func NewJoinWithIndex(from, to, fromIndex Field) (Join, error) {
	return JoinFrom(from).SetTo(to).FromIndex(fromIndex)
}

// From returns the local join key
func (j Join) From() Field {
	return j.from
}

// To returns the field matched against From
func (j Join) To() Field {
	return j.to
}

// FromIndex returns the source collection and whether one was set
func (j Join) FromIndex() (Field, bool) {
	return j.fromIndex, j.fromIndex != nil
}

// IsZero reports whether j was never built
func (j Join) IsZero() bool {
	return j.from == nil && j.to == nil
}

// Equal reports whether both joins name the same fields
func (j Join) Equal(other Join) bool {
	return sameField(j.from, other.from) &&
		sameField(j.to, other.to) &&
		sameField(j.fromIndex, other.fromIndex)
}

// JoinBuilder accumulates the parts of a Join. A builder is meant for a single
// construction and must not be shared between goroutines.
type JoinBuilder struct {
	join Join
	err  error
}

// JoinFrom starts a join on the given local field
func JoinFrom(from Field) *JoinBuilder {
	jb := &JoinBuilder{}
	if isMissing(from) {
		jb.err = invalidArgument("join from field is required")
		return jb
	}
	jb.join.from = from
	return jb
}

// JoinFromName starts a join on the named local field
func JoinFromName(name string) *JoinBuilder {
	return JoinFrom(fieldFromName(name))
}

// SetTo sets the target field and keeps the builder open so FromIndex can follow
func (jb *JoinBuilder) SetTo(to Field) *JoinBuilder {
	if jb.err != nil {
		return jb
	}
	if isMissing(to) {
		jb.err = invalidArgument("join to field is required")
		return jb
	}
	jb.join.to = to
	return jb
}

// SetToName is SetTo for a field name
func (jb *JoinBuilder) SetToName(name string) *JoinBuilder {
	return jb.SetTo(fieldFromName(name))
}

// To sets the target field and completes the join
func (jb *JoinBuilder) To(to Field) (Join, error) {
	return jb.SetTo(to).Build()
}

// ToName is To for a field name
func (jb *JoinBuilder) ToName(name string) (Join, error) {
	return jb.To(fieldFromName(name))
}

// FromIndex sets the source collection and completes the join
func (jb *JoinBuilder) FromIndex(fromIndex Field) (Join, error) {
	if jb.err == nil && isMissing(fromIndex) {
		jb.err = invalidArgument("join fromIndex is required when set")
	}
	if jb.err != nil {
		return Join{}, jb.err
	}
	jb.join.fromIndex = fromIndex
	return jb.Build()
}

// FromIndexName is FromIndex for a collection name
func (jb *JoinBuilder) FromIndexName(name string) (Join, error) {
	return jb.FromIndex(fieldFromName(name))
}

// Err returns the first error recorded by the builder
func (jb *JoinBuilder) Err() error {
	return jb.err
}

// Build completes the join. It fails if any step failed or no target field was set.
func (jb *JoinBuilder) Build() (Join, error) {
	if jb.err != nil {
		return Join{}, jb.err
	}
	if jb.join.to == nil {
		return Join{}, invalidArgument("join to field is required")
	}
	return jb.join, nil
}
