package instance

// OptionValue is a custom-option value. Booleans serialize as True/False
// unless the numeric coercion form is used, which serializes as 1/0.
type OptionValue struct {
	text    string
	boolean bool
	isBool  bool
	numeric bool
}

// CustomOption is one Key=Value entry in the custom options file. Options
// keep their declared order.
type CustomOption struct {
	Key   string
	Value OptionValue
}

func StringOption(s string) OptionValue {
	return OptionValue{text: s}
}

func BoolOption(b bool) OptionValue {
	return OptionValue{boolean: b, isBool: true}
}

// NumericBoolOption is for the options the server parses as 0/1 rather
// than False/True.
func NumericBoolOption(b bool) OptionValue {
	return OptionValue{boolean: b, isBool: true, numeric: true}
}

// Render returns the value as it appears on the right-hand side of the
// Key=Value line.
func (v OptionValue) Render() string {
	if !v.isBool {
		return v.text
	}
	if v.numeric {
		if v.boolean {
			return "1"
		}
		return "0"
	}
	if v.boolean {
		return "True"
	}
	return "False"
}
