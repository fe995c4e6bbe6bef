package plugin

import (
	"fmt"
	"reflect"
	"strings"
)

// Meta marks a struct as a rule declaration. Embed it and describe the rule
// in its struct tags:
//
//	type readFile struct {
//		plugin.Meta `cleanup:"id=ioutil-readfile;kind=call;pattern=ReadFile($args$);type=io/ioutil" rewrite:"replace=os.ReadFile($args$);add=os;remove=io/ioutil"`
//	}
//
// The cleanup tag takes id, kind, pattern, type and desc. The rewrite tag
// takes replace and the comma-separated lists add, remove, adddot and
// removedot.
type Meta struct{}

var metaType = reflect.TypeOf(Meta{})

// metaTag returns the tag of the embedded Meta field of v.
func metaTag(v any) (reflect.StructTag, string, bool) {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "", "<nil>", false
	}
	if t.Kind() != reflect.Struct {
		return "", t.String(), false
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type == metaType {
			return f.Tag, t.String(), true
		}
	}
	return "", t.String(), false
}

// tagFields splits "a=1;b=2" into its key/value pairs.
func tagFields(tag string) (map[string]string, error) {
	fields := make(map[string]string)
	for _, part := range strings.Split(tag, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("tag field %q has no value", part)
		}
		fields[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return fields, nil
}

func tagList(value string) []string {
	var list []string
	for _, s := range strings.Split(value, ",") {
		if s = strings.TrimSpace(s); s != "" {
			list = append(list, s)
		}
	}
	return list
}
