package store

import (
	"strconv"
)

// AttributeValue is a single typed attribute. Exactly one of the tags is set.
type AttributeValue struct {
	S    *string `json:"S,omitempty"`
	N    *string `json:"N,omitempty"`
	BOOL *bool   `json:"BOOL,omitempty"`
}

// Item is one row: attribute name -> typed value.
type Item map[string]AttributeValue

// Key addresses a row by partition and sort key.
type Key struct {
	PK string
	SK string
}

func S(v string) AttributeValue {
	return AttributeValue{S: &v}
}

func N(v int64) AttributeValue {
	s := strconv.FormatInt(v, 10)
	return AttributeValue{N: &s}
}

func Bool(v bool) AttributeValue {
	return AttributeValue{BOOL: &v}
}

// Equal compares tag and value.
func (a AttributeValue) Equal(b AttributeValue) bool {
	switch {
	case a.S != nil:
		return b.S != nil && *a.S == *b.S
	case a.N != nil:
		return b.N != nil && *a.N == *b.N
	case a.BOOL != nil:
		return b.BOOL != nil && *a.BOOL == *b.BOOL
	}
	return b.S == nil && b.N == nil && b.BOOL == nil
}

// Key returns the primary key carried by the item.
func (it Item) Key() Key {
	var k Key
	if v, ok := it[AttrPK]; ok && v.S != nil {
		k.PK = *v.S
	}
	if v, ok := it[AttrSK]; ok && v.S != nil {
		k.SK = *v.S
	}
	return k
}

// Merge returns a copy of it with every attribute of set applied on top.
func (it Item) Merge(set Item) Item {
	out := make(Item, len(it)+len(set))
	for k, v := range it {
		out[k] = v
	}
	for k, v := range set {
		out[k] = v
	}
	return out
}

// ClauseOp 条件子句类型
type ClauseOp int

const (
	OpEquals ClauseOp = iota
	OpExists
	OpNotExists
)

// Clause is one term of a condition expression.
type Clause struct {
	Op    ClauseOp
	Attr  string
	Value AttributeValue
}

// Condition is a conjunction of clauses. The empty condition always holds.
type Condition []Clause

func Equals(attr string, v AttributeValue) Clause {
	return Clause{Op: OpEquals, Attr: attr, Value: v}
}

func Exists(attr string) Clause {
	return Clause{Op: OpExists, Attr: attr}
}

func NotExists(attr string) Clause {
	return Clause{Op: OpNotExists, Attr: attr}
}

// And appends clauses to a condition.
func (c Condition) And(clauses ...Clause) Condition {
	out := make(Condition, 0, len(c)+len(clauses))
	out = append(out, c...)
	return append(out, clauses...)
}

// Evaluate checks the condition against an item. A nil item is a missing
// row: only NotExists clauses can hold for it.
func (c Condition) Evaluate(it Item) bool {
	for _, cl := range c {
		v, ok := it[cl.Attr]
		switch cl.Op {
		case OpEquals:
			if !ok || !v.Equal(cl.Value) {
				return false
			}
		case OpExists:
			if !ok {
				return false
			}
		case OpNotExists:
			if ok {
				return false
			}
		}
	}
	return true
}
