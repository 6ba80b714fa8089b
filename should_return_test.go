package mvctest

import (
	"errors"
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"net/http"
	"strings"
	"testing"
)

func TestShouldReturn_Passing(t *testing.T) {
	app := testApplication()
	t.Run("ok", func(t *testing.T) {
		Controller[PetsController](t, app).
			Calling("Get", 1).
			ShouldReturn().Ok().
			WithModel(&pet{Id: 1, Name: "Felix", Tag: "cat"}).
			AndAlso().WithModelOfType(&pet{}).
			AndAlso().WithModelPath("tag", "cat").
			AndAlso().WithModelPassing(func(model any) bool {
			return model.(*pet).Id == 1
		})
	})
	t.Run("not found", func(t *testing.T) {
		Controller[PetsController](t, app).
			Calling("Get", 99).
			ShouldReturn().NotFound().WithNoModel()
	})
	t.Run("bad request", func(t *testing.T) {
		Controller[PetsController](t, app).
			Calling("Get", -1).
			ShouldReturn().BadRequest().
			WithErrorMessage("error").
			AndAlso().WithErrorMessageContaining("err")
	})
	t.Run("validation problem", func(t *testing.T) {
		Controller[PetsController](t, app).
			Calling("Validate").
			ShouldReturn().BadRequest().
			WithValidationErrorFor("name").
			AndAlso().WithModelOfType(&mvc.ValidationProblem{})
	})
	t.Run("created at action", func(t *testing.T) {
		Controller[PetsController](t, app).
			Calling("Create", pet{Id: 5, Name: "Kitty"}).
			ShouldReturn().Created().
			AtAction("Get").
			AndAlso().AtController("PetsController").
			AndAlso().ContainingRouteValue("id", 5).
			AndAlso().ContainingRouteValues(map[string]any{"id": "5"}).
			AndAlso().WithModel(pet{Id: 5, Name: "Kitty"})
	})
	t.Run("status code", func(t *testing.T) {
		Controller[PetsController](t, app).
			Calling("Remember", "Felix").
			ShouldReturn().StatusCode(http.StatusNoContent).
			AndAlso().NoContent()
	})
	t.Run("redirect to action", func(t *testing.T) {
		Controller[HomeController](t, app).
			Calling("Pets").
			ShouldReturn().Redirect().
			ToAction("Get").
			AndAlso().ToController("Pets").
			AndAlso().ContainingRouteValue("id", 1).
			AndAlso().Temporary()
	})
	t.Run("redirect permanent", func(t *testing.T) {
		Controller[HomeController](t, app).
			Calling("Away").
			ShouldReturn().Redirect().
			ToUrl("https://example.org").
			AndAlso().Permanent()
	})
	t.Run("content", func(t *testing.T) {
		Controller[HomeController](t, app).
			Calling("About", "us").
			ShouldReturn().Content().
			WithContent("about us").
			AndAlso().ContainingText("us").
			AndAlso().WithContentType("text/plain")
	})
	t.Run("file", func(t *testing.T) {
		Controller[HomeController](t, app).
			Calling("Download").
			ShouldReturn().File().
			WithContents([]byte("abc")).
			AndAlso().WithContentType("text/plain").
			AndAlso().WithDownloadName("abc.txt")
	})
	t.Run("default view", func(t *testing.T) {
		Controller[HomeController](t, app).
			Calling("Index").
			ShouldReturn().View("Index").
			WithModelPath("title", "Home").
			AndAlso().WithStatusCode(http.StatusOK)
	})
	t.Run("challenge", func(t *testing.T) {
		Controller[HomeController](t, app).
			Calling("Login").
			ShouldReturn().Challenge().
			ContainingAuthenticationScheme("Bearer").
			AndAlso().WithAuthenticationSchemes("Cookies", "Bearer")
	})
	t.Run("awaited result", func(t *testing.T) {
		Controller[PetsController](t, app).
			Calling("Find", 2).
			ShouldReturn().Model(&pet{Id: 2, Name: "Rex", Tag: "dog"}).
			AndAlso().ResultOfType(&pet{})
	})
	t.Run("result of interface type", func(t *testing.T) {
		Controller[PetsController](t, app).
			Calling("Get", 1).
			ShouldReturn().ResultOfType((*mvc.ActionResult)(nil)).
			AndAlso().Passing(func(result any) bool {
			return result != nil
		})
	})
	t.Run("empty", func(t *testing.T) {
		cb := Controller[PetsController](t, app)
		cb.Calling("Touch").ShouldReturnEmpty()
		assert.True(t, cb.Instance().touched)
	})
}

func TestShouldReturn_Failures(t *testing.T) {
	app := testApplication()
	testCases := []struct {
		assert   func(t *recordingT)
		category Category
		expect   string
	}{
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Get", -1).ShouldReturn().BadRequest().WithErrorMessage("other")
			},
			category: BadRequestResultAssertion,
			expect:   "When calling Get action in PetsController expected bad request result error message to be 'other', but instead received 'error'.",
		},
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Get", 1).ShouldReturn().NotFound()
			},
			category: ActionResultAssertion,
			expect:   "When calling Get action in PetsController expected action result to be not found result, but in fact it was *mvc.OkObjectResult.",
		},
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Get", 1).ShouldReturn().Ok().WithModelOfType(pet{})
			},
			category: ResponseModelAssertion,
			expect:   "When calling Get action in PetsController expected ok result model to be of type pet, but in fact it was of type *pet.",
		},
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Get", 1).ShouldReturn().Ok().WithModelPath("name", "Rex")
			},
			category: ResponseModelAssertion,
			expect:   `When calling Get action in PetsController expected ok result model path "name" to be 'Rex', but in fact it was 'Felix'.`,
		},
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Create", pet{Id: 5, Name: "Kitty"}).ShouldReturn().Created().AtAction("List")
			},
			category: CreatedResultAssertion,
			expect:   "When calling Create action in PetsController expected created result to have 'List' action name, but instead received 'Get'.",
		},
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Create", pet{Id: 5, Name: "Kitty"}).ShouldReturn().Created().ContainingRouteValue("name")
			},
			category: CreatedResultAssertion,
			expect:   "When calling Create action in PetsController expected created result to have route value with 'name' key, but such was not found.",
		},
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Remember", "Felix").ShouldReturn().StatusCode(http.StatusOK)
			},
			category: ActionResultAssertion,
			expect:   "When calling Remember action in PetsController expected action result to have 200 status code, but instead received 204.",
		},
		{
			assert: func(t *recordingT) {
				Controller[HomeController](t, app).Calling("Away").ShouldReturn().Redirect().Temporary()
			},
			category: RedirectResultAssertion,
			expect:   "When calling Away action in HomeController expected redirect result to be temporary, but in fact it was permanent.",
		},
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Delete", 1).ShouldReturn()
			},
			category: InvocationAssertion,
			expect:   "When calling Delete action in PetsController expected action to return normally, but it returned error 'delete pet 1: not allowed'.",
		},
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Explode").ShouldReturn().Ok()
			},
			category: InvocationAssertion,
			expect:   "When calling Explode action in PetsController expected action to return normally, but it panicked with 'boom'.",
		},
		{
			assert: func(t *recordingT) {
				Controller[PetsController](t, app).Calling("Get", 1).ShouldReturnEmpty()
			},
			category: InvocationAssertion,
			expect:   "When calling Get action in PetsController expected action to return nothing, but in fact it returned *mvc.OkObjectResult",
		},
	}
	for i, tc := range testCases {
		t.Run(fmt.Sprintf("[%d]", i+1), func(t *testing.T) {
			rt := newRecordingT()
			tc.assert(rt)
			require.Len(t, rt.fatals, 1)
			assert.Contains(t, rt.fatals[0], tc.expect)
			require.Len(t, rt.logs, 1)
			assert.Contains(t, rt.logs[0], "Category: \t"+string(tc.category))
		})
	}
}

func TestShouldReturn_FirstFailureOnly(t *testing.T) {
	rt := newRecordingT()
	tc := Controller[PetsController](rt, testApplication()).
		Calling("Get", 1).
		ShouldReturn().Ok().
		WithModelPath("name", "Rex").
		AndAlso().WithModelPath("tag", "dog").
		AndAlso().WithNoModel().
		AndAlso().WithModelPath("name", "Felix")
	require.NotNil(t, tc)
	assert.Len(t, rt.fatals, 1)
}

func TestShouldReturn_AssertionError(t *testing.T) {
	rt := newRecordingT()
	cb := Controller[PetsController](rt, testApplication())
	cb.Calling("Get", -1).ShouldReturn().BadRequest().WithErrorMessage("other")
	err := cb.Context().Failure()
	require.NotNil(t, err)
	assert.True(t, cb.Context().Failed())
	assert.Equal(t, BadRequestResultAssertion, err.Category())
	assert.Equal(t, "WithErrorMessage", err.Name())
	assert.Equal(t, "PetsController", err.Controller())
	assert.Equal(t, "Get", err.Action())
	assert.Equal(t, "other", err.Expected())
	assert.Equal(t, "error", err.Actual())
	require.NotNil(t, err.Frame())
	assert.True(t, strings.HasSuffix(err.Frame().File, "should_return_test.go"))
	assert.Equal(t, "TestShouldReturn_AssertionError", err.Frame().Name)
	assert.Equal(t, 242, err.Frame().Line)
	assert.Contains(t, err.TestFormat(), "should_return_test.go:242")
	var target *AssertionError
	assert.True(t, errors.As(error(err), &target))
}

func TestShouldReturn_ModelOverride(t *testing.T) {
	acb := Controller[PetsController](t, testApplication()).Calling("Get", 1)
	ok := acb.ShouldReturn().Ok()
	acb.Context().SetModel("overridden")
	ok.WithModel("overridden")
	assert.Equal(t, "overridden", acb.Context().Model())
}
