package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FlexStrings accepts a JSON null, a string or an array of strings.
// The backend uses the same field for one file and for many.
type FlexStrings struct {
	Raw     string   // set when the JSON value was a string
	List    []string // set when the JSON value was an array
	IsArray bool
}

// FlexString builds a string-valued FlexStrings.
func FlexString(s string) FlexStrings {
	return FlexStrings{Raw: s}
}

// FlexList builds an array-valued FlexStrings.
func FlexList(items ...string) FlexStrings {
	return FlexStrings{List: items, IsArray: true}
}

// Empty reports whether the field is absent, null, "" or [].
func (f FlexStrings) Empty() bool {
	if f.IsArray {
		return len(f.List) == 0
	}
	return f.Raw == ""
}

// String returns the raw value; arrays are joined with commas.
func (f FlexStrings) String() string {
	if f.IsArray {
		return strings.Join(f.List, ",")
	}
	return f.Raw
}

func (f *FlexStrings) UnmarshalJSON(data []byte) error {
	*f = FlexStrings{}
	if string(data) == "null" {
		return nil
	}
	if len(data) > 0 && data[0] == '[' {
		var list []any
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("flex strings: %w", err)
		}
		f.IsArray = true
		f.List = make([]string, 0, len(list))
		for _, v := range list {
			switch t := v.(type) {
			case string:
				f.List = append(f.List, t)
			case nil:
			default:
				f.List = append(f.List, fmt.Sprint(t))
			}
		}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("flex strings: %w", err)
	}
	f.Raw = s
	return nil
}

func (f FlexStrings) MarshalJSON() ([]byte, error) {
	if f.IsArray {
		if f.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(f.List)
	}
	if f.Raw == "" {
		return []byte("null"), nil
	}
	return json.Marshal(f.Raw)
}
