package types

// DataType represents the semantic type of a feature value
type DataType string

const (
	DataTypeNumeric     DataType = "numeric"
	DataTypeCategorical DataType = "categorical"
	DataTypeBoolean     DataType = "boolean"
	DataTypeText        DataType = "text"
	DataTypeDate        DataType = "date"
)

// AllDataTypes returns all valid feature data types
func AllDataTypes() []DataType {
	return []DataType{
		DataTypeNumeric,
		DataTypeCategorical,
		DataTypeBoolean,
		DataTypeText,
		DataTypeDate,
	}
}

// IsValid checks if the data type is valid
func (t DataType) IsValid() bool {
	switch t {
	case DataTypeNumeric,
		DataTypeCategorical,
		DataTypeBoolean,
		DataTypeText,
		DataTypeDate:
		return true
	default:
		return false
	}
}

// String returns the string representation of the data type
func (t DataType) String() string {
	return string(t)
}
