package resolve

import (
	"bytes"
	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"net/http"
	"sync"
	"testing"
)

func TestSetLogger(t *testing.T) {
	original := log()
	defer SetLogger(original)

	SetLogger(nil)
	assert.Same(t, original, log())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetLogger(charmlog.New(&bytes.Buffer{}))
			_ = log()
		}()
	}
	wg.Wait()

	buf := &bytes.Buffer{}
	l := charmlog.NewWithOptions(buf, charmlog.Options{Level: charmlog.DebugLevel})
	SetLogger(l)
	assert.Same(t, l, log())

	app := testApplication()
	services := PrepareServices(app)
	r := Resolve(services, app.Router(), testRouteContext(services, http.MethodGet, "/api/pets/5", ""))
	assert.False(t, r.Failed())
	assert.Contains(t, buf.String(), "resolved action")
}
