package types

// Operator represents a comparison operator used by risk factors
type Operator string

const (
	OperatorGt      Operator = "gt"
	OperatorLt      Operator = "lt"
	OperatorEq      Operator = "eq"
	OperatorGte     Operator = "gte"
	OperatorLte     Operator = "lte"
	OperatorNe      Operator = "ne"
	OperatorBetween Operator = "between"
	OperatorIn      Operator = "in"
)

// AllOperators returns all valid comparison operators
func AllOperators() []Operator {
	return []Operator{
		OperatorGt,
		OperatorLt,
		OperatorEq,
		OperatorGte,
		OperatorLte,
		OperatorNe,
		OperatorBetween,
		OperatorIn,
	}
}

// IsValid checks if the operator is valid
func (o Operator) IsValid() bool {
	switch o {
	case OperatorGt,
		OperatorLt,
		OperatorEq,
		OperatorGte,
		OperatorLte,
		OperatorNe,
		OperatorBetween,
		OperatorIn:
		return true
	default:
		return false
	}
}

// IsOrdered returns true for operators that require an ordered comparison
// between value and threshold
func (o Operator) IsOrdered() bool {
	switch o {
	case OperatorGt, OperatorLt, OperatorGte, OperatorLte, OperatorBetween:
		return true
	default:
		return false
	}
}

// CompatibleWith checks whether the operator is semantically applicable to
// the given feature data type. Equality operators apply to everything;
// ordered operators need numeric or date features; membership needs a
// categorical, numeric or text feature.
func (o Operator) CompatibleWith(dt DataType) bool {
	switch o {
	case OperatorEq, OperatorNe:
		return true
	case OperatorGt, OperatorLt, OperatorGte, OperatorLte, OperatorBetween:
		return dt == DataTypeNumeric || dt == DataTypeDate
	case OperatorIn:
		return dt == DataTypeCategorical || dt == DataTypeNumeric || dt == DataTypeText
	default:
		return false
	}
}

// String returns the string representation of the operator
func (o Operator) String() string {
	return string(o)
}
