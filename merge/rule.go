package merge

import "github.com/turretgirls-rus/tgkit/jsondoc"

// Rule locates the translatable text held by an object node. Match is the
// predicate; Get and Set read and replace the text of a matched object.
// Slot, when set, reports whether member key of obj is the container of
// the text; Collect does not descend into it.
type Rule struct {
	Match func(obj *jsondoc.Object) bool
	Get   func(obj *jsondoc.Object) string
	Set   func(obj *jsondoc.Object, text string)
	Slot  func(obj *jsondoc.Object, key string) bool
}

// DefaultRule matches the dump layout where English text is the first
// element of an "Array" field.
var DefaultRule = ArrayRule("Array", 0)

// ArrayRule matches objects whose field holds an array with a string at
// index. The remaining elements are left alone.
func ArrayRule(field string, index int) Rule {
	slot := func(obj *jsondoc.Object) ([]any, bool) {
		v, ok := obj.Get(field)
		if !ok {
			return nil, false
		}
		arr, ok := v.([]any)
		if !ok || index < 0 || index >= len(arr) {
			return nil, false
		}
		if _, ok := arr[index].(string); !ok {
			return nil, false
		}
		return arr, true
	}

	return Rule{
		Match: func(obj *jsondoc.Object) bool {
			_, ok := slot(obj)
			return ok
		},
		Get: func(obj *jsondoc.Object) string {
			arr, ok := slot(obj)
			if !ok {
				return ""
			}
			return arr[index].(string)
		},
		Set: func(obj *jsondoc.Object, text string) {
			if arr, ok := slot(obj); ok {
				arr[index] = text
			}
		},
		// any non-empty array under field is a text slot, whatever it holds
		Slot: func(obj *jsondoc.Object, key string) bool {
			if key != field {
				return false
			}
			v, _ := obj.Get(key)
			arr, ok := v.([]any)
			return ok && len(arr) > 0
		},
	}
}
