package mvctest

import (
	"bytes"
	"fmt"
	"github.com/go-andiamo/mvctest/mvc"
	"strings"
)

type ContentResultBuilder interface {
	WithContent(content string) And[ContentResultBuilder]
	ContainingText(text string) And[ContentResultBuilder]
	WithContentType(contentType string) And[ContentResultBuilder]
	WithStatusCode(code int) And[ContentResultBuilder]
}

type contentResultBuilder struct {
	*assertions[ContentResultBuilder]
	*statusCodeAssertions[ContentResultBuilder]
	*contentTypeAssertions[ContentResultBuilder]
}

func newContentResultBuilder(tc *TestContext) ContentResultBuilder {
	a := newAssertions[ContentResultBuilder](tc, ContentResultAssertion)
	result := &contentResultBuilder{
		assertions:           a,
		statusCodeAssertions: &statusCodeAssertions[ContentResultBuilder]{assertions: a, subject: "content result"},
		contentTypeAssertions: &contentTypeAssertions[ContentResultBuilder]{assertions: a, subject: "content result", contentType: func() []string {
			if cr, ok := tc.ActionResult().(*mvc.ContentResult); ok && cr.ContentType != "" {
				return []string{cr.ContentType}
			}
			return nil
		}},
	}
	a.self = result
	return result
}

func (b *contentResultBuilder) content() string {
	if cr, ok := b.tc.ActionResult().(*mvc.ContentResult); ok {
		return cr.Content
	}
	return ""
}

func (b *contentResultBuilder) WithContent(content string) And[ContentResultBuilder] {
	actual := b.content()
	return b.check("WithContent", actual == content, "content result", "have content "+formatValue(content),
		"instead received "+formatValue(actual), content, actual)
}

func (b *contentResultBuilder) ContainingText(text string) And[ContentResultBuilder] {
	actual := b.content()
	return b.check("ContainingText", strings.Contains(actual, text), "content result", "contain "+formatValue(text),
		"instead received "+formatValue(actual), text, actual)
}

type FileResultBuilder interface {
	WithContents(contents []byte) And[FileResultBuilder]
	WithContentType(contentType string) And[FileResultBuilder]
	WithDownloadName(name string) And[FileResultBuilder]
}

type fileResultBuilder struct {
	*assertions[FileResultBuilder]
	*contentTypeAssertions[FileResultBuilder]
}

func newFileResultBuilder(tc *TestContext) FileResultBuilder {
	a := newAssertions[FileResultBuilder](tc, FileResultAssertion)
	result := &fileResultBuilder{
		assertions: a,
		contentTypeAssertions: &contentTypeAssertions[FileResultBuilder]{assertions: a, subject: "file result", contentType: func() []string {
			if fr, ok := tc.ActionResult().(*mvc.FileContentResult); ok && fr.ContentType != "" {
				return []string{fr.ContentType}
			}
			return nil
		}},
	}
	a.self = result
	return result
}

func (b *fileResultBuilder) file() *mvc.FileContentResult {
	if fr, ok := b.tc.ActionResult().(*mvc.FileContentResult); ok {
		return fr
	}
	return &mvc.FileContentResult{}
}

func (b *fileResultBuilder) WithContents(contents []byte) And[FileResultBuilder] {
	actual := b.file().Contents
	return b.check("WithContents", bytes.Equal(actual, contents), "file result", fmt.Sprintf("have contents of %d bytes", len(contents)),
		fmt.Sprintf("the contents were different (%d bytes)", len(actual)), contents, actual)
}

func (b *fileResultBuilder) WithDownloadName(name string) And[FileResultBuilder] {
	actual := b.file().FileDownloadName
	return b.check("WithDownloadName", actual == name, "file result", fmt.Sprintf("have '%s' download name", name),
		fmt.Sprintf("instead received '%s'", actual), name, actual)
}
