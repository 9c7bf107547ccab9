package framer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feedAll feeds every byte of in and returns the completed objects and the
// events seen.
func feedAll(f *Framer, in string) ([]string, []Event) {
	var objects []string
	var events []Event
	for i := 0; i < len(in); i++ {
		ev := f.Feed(in[i])
		events = append(events, ev)
		if ev == Complete {
			objects = append(objects, string(f.Object()))
		}
	}
	return objects, events
}

func TestFeed_SingleObjectSurroundedByNoise(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		object string
	}{
		{name: "bare", input: `{"a":1}`, object: `{"a":1}`},
		{name: "leading noise", input: "HTTP/1.1 200 OK\r\n\r\n" + `{"a":1}`, object: `{"a":1}`},
		{name: "trailing noise", input: `{"a":1}` + "\r\n0\r\n", object: `{"a":1}`},
		{name: "whitespace kept", input: "x { \"a\" :\n 1 } y", object: "{ \"a\" :\n 1 }"},
		{name: "arrays", input: `--{"l":[1,[2,3],{"x":[]}]}--`, object: `{"l":[1,[2,3],{"x":[]}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := New(16)
			objects, _ := feedAll(f, tt.input)

			require.Len(t, objects, 1)
			assert.Equal(t, tt.object, objects[0])
			assert.False(t, f.Accumulating())
			assert.Equal(t, 0, f.Depth())
		})
	}
}

func TestFeed_NeverCompletesWithoutOpenBrace(t *testing.T) {
	f := New(0)
	objects, events := feedAll(f, "HTTP/1.1 404 Not Found\r\n}]]}}\r\nnothing here")

	assert.Empty(t, objects)
	for _, ev := range events {
		assert.Equal(t, Idle, ev)
	}
	assert.Equal(t, 0, f.Depth())
	assert.False(t, f.Accumulating())
}

func TestFeed_StrayCloseBeforeObjectIsIgnored(t *testing.T) {
	f := New(0)
	objects, _ := feedAll(f, `}}{"a":2}`)

	require.Len(t, objects, 1)
	assert.Equal(t, `{"a":2}`, objects[0])
}

func TestFeed_BackToBackObjects(t *testing.T) {
	f := New(0)
	objects, _ := feedAll(f, `{"a":{"b":1}}{"c":2} {"d":[{}]}`)

	require.Len(t, objects, 3)
	assert.Equal(t, `{"a":{"b":1}}`, objects[0])
	assert.Equal(t, `{"c":2}`, objects[1])
	assert.Equal(t, `{"d":[{}]}`, objects[2])
}

func TestFeed_CompletedObjectIsNotOverwritten(t *testing.T) {
	f := New(64)
	feedAll(f, `{"first":1}`)
	first := f.Object()

	feedAll(f, `{"second":2}`)

	assert.Equal(t, `{"first":1}`, string(first))
	assert.Equal(t, `{"second":2}`, string(f.Object()))
}

func TestFeed_NestedCompletesAtOuterBrace(t *testing.T) {
	f := New(0)
	in := `{"a":{"b":1}}`

	var completedAt []int
	for i := 0; i < len(in); i++ {
		if f.Feed(in[i]) == Complete {
			completedAt = append(completedAt, i)
		}
	}

	require.Equal(t, []int{len(in) - 1}, completedAt)
	assert.Len(t, f.Object(), 13)
	assert.Equal(t, in, string(f.Object()))
}

func TestFeed_DepthTracksNesting(t *testing.T) {
	f := New(0)
	want := []int{1, 1, 2, 2, 1, 0}

	in := `{a{b}}`
	for i := 0; i < len(in); i++ {
		f.Feed(in[i])
		assert.Equal(t, want[i], f.Depth(), "after byte %d", i)
	}
}

func TestFeed_BraceInsideStringDesynchronises(t *testing.T) {
	// Known limitation: string content is not tracked.
	f := New(0)
	objects, _ := feedAll(f, `{"name":"a}b","x":1}`)

	require.Len(t, objects, 1)
	assert.Equal(t, `{"name":"a}`, objects[0])
}

func TestAbort_DiscardsPartialObject(t *testing.T) {
	f := New(0)
	objects, events := feedAll(f, `{"list":[{"main":{"temp":`)

	require.Empty(t, objects)
	assert.Equal(t, Continue, events[len(events)-1])
	assert.True(t, f.Accumulating())
	assert.Equal(t, 3, f.Depth())

	assert.True(t, f.Abort())
	assert.False(t, f.Accumulating())
	assert.Equal(t, 0, f.Depth())
	assert.Equal(t, 0, f.Len())

	objects, _ = feedAll(f, `{"ok":true}`)
	require.Len(t, objects, 1)
	assert.Equal(t, `{"ok":true}`, objects[0])
}

func TestAbort_WhenIdle(t *testing.T) {
	f := New(0)
	feedAll(f, "HTTP/1.1 200 OK")

	assert.False(t, f.Abort())
	assert.False(t, f.Accumulating())
}

func TestEvent_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "continue", Continue.String())
	assert.Equal(t, "complete", Complete.String())
	assert.Equal(t, "event(9)", Event(9).String())
}
