package coverage

import (
	"github.com/go-andiamo/splitter"
	"strings"
)

// routeKey reduces an action route template or an OAS path to the key used to pair them
//
// literal segments are lower-cased (action templates are registered lower-case) and every
// route variable becomes "{}" - so "api/pets/{id:int}", "/api/pets/{id?}" and "/API/Pets/{petId}"
// all give "/api/pets/{}"
func routeKey(template string) string {
	template = strings.TrimPrefix(template, "~")
	segments, err := segmentSplitter.Split(template)
	if err != nil {
		return template
	}
	return "/" + strings.Join(segments, "/")
}

var segmentSplitter = splitter.MustCreateSplitter('/', splitter.CurlyBrackets).AddDefaultOptions(
	splitter.IgnoreEmptyFirst,
	splitter.IgnoreEmptyLast,
	&routeSegment{})

// routeSegment is the splitter post-capture that normalizes each path segment
type routeSegment struct{}

func (rs *routeSegment) Apply(s string, pos int, totalLen int, captured int, skipped int, isLast bool, subParts ...splitter.SubPart) (string, bool, error) {
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return "{}", true, nil
	}
	return strings.ToLower(s), true, nil
}
