package coverage

import (
	"github.com/stretchr/testify/assert"
	"testing"
)

func Test_routeKey(t *testing.T) {
	testCases := []struct {
		template string
		expect   string
	}{
		{template: "api/pets/{id:int}", expect: "/api/pets/{}"},
		{template: "/api/pets/{petId}", expect: "/api/pets/{}"},
		{template: "/API/Pets/{id?}", expect: "/api/pets/{}"},
		{template: "~/home/{*rest}", expect: "/home/{}"},
		{template: "/foo/{id}/bar/{id}", expect: "/foo/{}/bar/{}"},
		{template: "/Api/Pets/", expect: "/api/pets"},
		{template: "/foo/{unbalanced", expect: "/foo/{unbalanced"},
	}
	for i, tc := range testCases {
		t.Run(fmtCase(i), func(t *testing.T) {
			assert.Equal(t, tc.expect, routeKey(tc.template))
		})
	}
}
