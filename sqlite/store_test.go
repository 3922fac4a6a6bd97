package sqlite

import (
	"bytes"
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/graftdb/graft"
)

func openTestConn(t *testing.T) *Conn {
	t.Helper()
	c, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func mustAtom(t *testing.T, c *Conn) graft.Atom {
	t.Helper()
	a, err := c.CreateAtom(context.Background())
	if err != nil {
		t.Fatalf("CreateAtom() failed: %v", err)
	}
	return a
}

func TestOpen_Idempotent(t *testing.T) {
	dir := t.TempDir()
	c1, err := Open(dir)
	if err != nil {
		t.Fatalf("first Open() failed: %v", err)
	}
	a := mustAtom(t, c1)
	c1.Close()

	c2, err := Open(dir)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer c2.Close()

	rows, err := c2.QueryAll(context.Background(), `?- atom(A).`)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(rows) != 1 || rows[0][0] != a.String() {
		t.Errorf("atoms after reopen = %v, want [[%s]]", rows, a)
	}
}

func TestCreateName_UniqueReplaceQuery(t *testing.T) {
	c := openTestConn(t)
	ctx := context.Background()
	a1 := mustAtom(t, c)
	a2 := mustAtom(t, c)

	if err := c.CreateName(ctx, a1, "example", "foo", false); err != nil {
		t.Fatalf("CreateName(a1) failed: %v", err)
	}

	err := c.CreateName(ctx, a2, "example", "foo", false)
	if !graft.IsDuplicateKey(err) {
		t.Fatalf("second CreateName = %v, want DuplicateKey", err)
	}

	// The failed create must not have touched the binding.
	row, err := c.QueryFirst(ctx, `?- name(A, "example", "foo").`)
	if err != nil {
		t.Fatalf("QueryFirst() failed: %v", err)
	}
	if row == nil || row[0] != a1.String() {
		t.Errorf("binding = %v, want [%s]", row, a1)
	}

	if err := c.CreateName(ctx, a2, "example", "foo", true); err != nil {
		t.Fatalf("CreateName(replace) failed: %v", err)
	}
	row, err = c.QueryFirst(ctx, `?- name(A, "example", "foo").`)
	if err != nil {
		t.Fatalf("QueryFirst() failed: %v", err)
	}
	if row == nil || row[0] != a2.String() {
		t.Errorf("binding after replace = %v, want [%s]", row, a2)
	}

	// Exactly one live binding.
	rows, err := c.QueryAll(ctx, `?- name(A, "example", "foo").`)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("got %d bindings, want 1", len(rows))
	}
}

func TestCreateName_UnknownAtom(t *testing.T) {
	c := openTestConn(t)
	ghost := graft.NewAtom() // never registered

	err := c.CreateName(context.Background(), ghost, "ns", "t", false)
	if !graft.IsNotFound(err) {
		t.Errorf("CreateName(unregistered atom) = %v, want NotFound", err)
	}
}

func TestCreateName_Validation(t *testing.T) {
	c := openTestConn(t)
	ctx := context.Background()
	a := mustAtom(t, c)

	err := c.CreateName(ctx, a, strings.Repeat("n", 257), "t", false)
	if !graft.IsMalformed(err) {
		t.Fatalf("oversized namespace = %v, want Malformed", err)
	}
	err = c.CreateName(ctx, a, "ns", "bad\xffutf8", false)
	if !graft.IsMalformed(err) {
		t.Fatalf("invalid UTF-8 title = %v, want Malformed", err)
	}

	// Validation failures leave no facts behind.
	rows, err := c.QueryAll(ctx, `?- name(A, NS, T).`)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("names after failed validation = %v, want none", rows)
	}
}

func TestCreateEdge_DirectionAndDuplicates(t *testing.T) {
	c := openTestConn(t)
	ctx := context.Background()
	a := mustAtom(t, c)
	b := mustAtom(t, c)

	if err := c.CreateEdge(ctx, a, b, "x"); err != nil {
		t.Fatalf("CreateEdge(a,b) failed: %v", err)
	}
	if err := c.CreateEdge(ctx, a, b, "x"); !graft.IsDuplicateKey(err) {
		t.Fatalf("duplicate CreateEdge = %v, want DuplicateKey", err)
	}
	// Reverse direction is an independent key.
	if err := c.CreateEdge(ctx, b, a, "x"); err != nil {
		t.Fatalf("CreateEdge(b,a) failed: %v", err)
	}
	// Same endpoints, different label.
	if err := c.CreateEdge(ctx, a, b, "y"); err != nil {
		t.Fatalf("CreateEdge(a,b,y) failed: %v", err)
	}

	rows, err := c.QueryAll(ctx, `?- edge(From, To, Label).`)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	want := [][]string{
		{a.String(), b.String(), "x"},
		{b.String(), a.String(), "x"},
		{a.String(), b.String(), "y"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("edges = %v, want %v", rows, want)
	}
}

func TestCreateTag_Replace(t *testing.T) {
	c := openTestConn(t)
	ctx := context.Background()
	a := mustAtom(t, c)

	if err := c.CreateTag(ctx, a, "color", "red", false); err != nil {
		t.Fatalf("CreateTag() failed: %v", err)
	}
	if err := c.CreateTag(ctx, a, "color", "blue", false); !graft.IsDuplicateKey(err) {
		t.Fatalf("duplicate CreateTag = %v, want DuplicateKey", err)
	}
	if err := c.CreateTag(ctx, a, "color", "blue", true); err != nil {
		t.Fatalf("CreateTag(replace) failed: %v", err)
	}

	row, err := c.QueryFirst(ctx, fmt.Sprintf(`?- tag("%s", "color", V).`, a))
	if err != nil {
		t.Fatalf("QueryFirst() failed: %v", err)
	}
	if row == nil || row[0] != "blue" {
		t.Errorf("tag value = %v, want [blue]", row)
	}
}

func TestBlobs_StoreAttachFetch(t *testing.T) {
	c := openTestConn(t)
	ctx := context.Background()
	a := mustAtom(t, c)

	h, err := c.StoreBlob(ctx, strings.NewReader("bar"))
	if err != nil {
		t.Fatalf("StoreBlob() failed: %v", err)
	}
	h2, err := c.StoreBlob(ctx, strings.NewReader("bar"))
	if err != nil {
		t.Fatalf("second StoreBlob() failed: %v", err)
	}
	if h != h2 {
		t.Fatalf("StoreBlob not idempotent: %s then %s", h, h2)
	}

	// Attaching an unstored hash fails before anything is written.
	err = c.CreateBlobAttachment(ctx, a, "avatar", "text/plain", graft.HashBytes([]byte("unstored")), false)
	if !graft.IsUnknownHash(err) {
		t.Fatalf("attach unstored hash = %v, want UnknownHash", err)
	}

	if err := c.CreateBlobAttachment(ctx, a, "avatar", "text/plain", h, false); err != nil {
		t.Fatalf("CreateBlobAttachment() failed: %v", err)
	}
	if err := c.CreateBlobAttachment(ctx, a, "avatar", "text/plain", h, false); !graft.IsDuplicateKey(err) {
		t.Fatalf("duplicate attachment = %v, want DuplicateKey", err)
	}

	// Replace rebinds mime and hash under the same (atom, kind).
	h3, err := c.StoreBlob(ctx, strings.NewReader("baz"))
	if err != nil {
		t.Fatalf("StoreBlob() failed: %v", err)
	}
	if err := c.CreateBlobAttachment(ctx, a, "avatar", "application/octet-stream", h3, true); err != nil {
		t.Fatalf("CreateBlobAttachment(replace) failed: %v", err)
	}

	rows, err := c.QueryAll(ctx, fmt.Sprintf(`?- blob("%s", "avatar", M, H).`, a))
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	want := [][]string{{"application/octet-stream", h3.String()}}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("attachments = %v, want %v", rows, want)
	}

	rc, err := c.FetchBlob(ctx, h3)
	if err != nil {
		t.Fatalf("FetchBlob() failed: %v", err)
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(rc); err != nil {
		t.Fatalf("reading blob failed: %v", err)
	}
	if buf.String() != "baz" {
		t.Errorf("blob content = %q, want %q", buf.String(), "baz")
	}

	_, err = c.FetchBlob(ctx, graft.HashBytes([]byte("unstored")))
	if !graft.IsNotFound(err) {
		t.Errorf("FetchBlob(unstored) = %v, want NotFound", err)
	}
}

func TestCreateBlobAttachment_InvalidMIME(t *testing.T) {
	c := openTestConn(t)
	a := mustAtom(t, c)
	h, err := c.StoreBlob(context.Background(), strings.NewReader("x"))
	if err != nil {
		t.Fatalf("StoreBlob() failed: %v", err)
	}
	err = c.CreateBlobAttachment(context.Background(), a, "k", "not a mime", h, false)
	if !graft.IsMalformed(err) {
		t.Errorf("invalid mime = %v, want Malformed", err)
	}
}

func TestQuery_JoinAndOrdering(t *testing.T) {
	c := openTestConn(t)
	ctx := context.Background()
	a1 := mustAtom(t, c)
	a2 := mustAtom(t, c)
	a3 := mustAtom(t, c)

	if err := c.CreateEdge(ctx, a1, a2, "next"); err != nil {
		t.Fatalf("CreateEdge() failed: %v", err)
	}
	if err := c.CreateEdge(ctx, a2, a3, "next"); err != nil {
		t.Fatalf("CreateEdge() failed: %v", err)
	}
	if err := c.CreateTag(ctx, a2, "color", "red", false); err != nil {
		t.Fatalf("CreateTag() failed: %v", err)
	}
	if err := c.CreateTag(ctx, a3, "color", "blue", false); err != nil {
		t.Fatalf("CreateTag() failed: %v", err)
	}

	q := `?- edge(A, B, "next"), tag(B, "color", C).`
	rows, err := c.QueryAll(ctx, q)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	want := [][]string{
		{a1.String(), a2.String(), "red"},
		{a2.String(), a3.String(), "blue"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("join rows = %v, want %v", rows, want)
	}

	// Stable across repeated calls on an unchanged store.
	for i := 0; i < 3; i++ {
		again, err := c.QueryAll(ctx, q)
		if err != nil {
			t.Fatalf("QueryAll() failed: %v", err)
		}
		if !reflect.DeepEqual(rows, again) {
			t.Fatalf("QueryAll not deterministic: %v then %v", rows, again)
		}
	}

	// QueryFirst is exactly the head of QueryAll.
	first, err := c.QueryFirst(ctx, q)
	if err != nil {
		t.Fatalf("QueryFirst() failed: %v", err)
	}
	if !reflect.DeepEqual(first, rows[0]) {
		t.Errorf("QueryFirst = %v, want %v", first, rows[0])
	}

	// Empty result: QueryFirst reports none, not an error.
	first, err = c.QueryFirst(ctx, `?- tag(A, "color", "green").`)
	if err != nil {
		t.Fatalf("QueryFirst(empty) failed: %v", err)
	}
	if first != nil {
		t.Errorf("QueryFirst(empty) = %v, want nil", first)
	}
}

func TestQuery_Malformed(t *testing.T) {
	c := openTestConn(t)
	for _, q := range []string{
		``,
		`?- nope(A).`,
		`?- name(A).`,
		`?- name("not-a-uuid", "a", "b").`,
	} {
		_, err := c.QueryAll(context.Background(), q)
		if !graft.IsMalformed(err) {
			t.Errorf("QueryAll(%q) = %v, want Malformed", q, err)
		}
	}
}

// TestCreateName_ConcurrentRace exercises the linearizability contract: of
// N concurrent attempts to bind one (ns, title) key without replace,
// exactly one wins and the rest fail DuplicateKey.
func TestCreateName_ConcurrentRace(t *testing.T) {
	c := openTestConn(t)
	ctx := context.Background()

	const n = 16
	atoms := make([]graft.Atom, n)
	for i := range atoms {
		atoms[i] = mustAtom(t, c)
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.CreateName(ctx, atoms[i], "race", "key", false)
		}(i)
	}
	wg.Wait()

	var wins, dups int
	for i, err := range errs {
		switch {
		case err == nil:
			wins++
		case graft.IsDuplicateKey(err):
			dups++
		default:
			t.Errorf("call %d: unexpected error %v", i, err)
		}
	}
	if wins != 1 || dups != n-1 {
		t.Errorf("got %d successes and %d DuplicateKey, want 1 and %d", wins, dups, n-1)
	}

	// The winner's atom is the live binding.
	row, err := c.QueryFirst(ctx, `?- name(A, "race", "key").`)
	if err != nil {
		t.Fatalf("QueryFirst() failed: %v", err)
	}
	winner := -1
	for i, e := range errs {
		if e == nil {
			winner = i
		}
	}
	if row == nil || row[0] != atoms[winner].String() {
		t.Errorf("live binding = %v, want [%s]", row, atoms[winner])
	}
}

// TestExampleScenario walks the full workflow end to end: atoms, names
// with replace, directed edges, and deduplicated blob content.
func TestExampleScenario(t *testing.T) {
	c := openTestConn(t)
	ctx := context.Background()

	a1 := mustAtom(t, c)
	a2 := mustAtom(t, c)

	if err := c.CreateName(ctx, a1, "example", "foo", false); err != nil {
		t.Fatalf("CreateName(a1) failed: %v", err)
	}
	if err := c.CreateName(ctx, a2, "example", "foo", false); !graft.IsDuplicateKey(err) {
		t.Fatalf("CreateName(a2) = %v, want DuplicateKey", err)
	}
	if err := c.CreateName(ctx, a2, "example", "foo", true); err != nil {
		t.Fatalf("CreateName(a2, replace) failed: %v", err)
	}
	row, err := c.QueryFirst(ctx, `?- name(A, "example", "foo").`)
	if err != nil {
		t.Fatalf("QueryFirst() failed: %v", err)
	}
	if row == nil || row[0] != a2.String() {
		t.Fatalf("binding = %v, want [%s]", row, a2)
	}

	if err := c.CreateEdge(ctx, a1, a2, "next"); err != nil {
		t.Fatalf("CreateEdge() failed: %v", err)
	}
	if err := c.CreateEdge(ctx, a1, a2, "next"); !graft.IsDuplicateKey(err) {
		t.Fatalf("duplicate edge = %v, want DuplicateKey", err)
	}
	if err := c.CreateEdge(ctx, a2, a1, "prev"); err != nil {
		t.Fatalf("reverse edge failed: %v", err)
	}

	rows, err := c.QueryAll(ctx, `?- edge(From, To, Label).`)
	if err != nil {
		t.Fatalf("QueryAll() failed: %v", err)
	}
	want := [][]string{
		{a1.String(), a2.String(), "next"},
		{a2.String(), a1.String(), "prev"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("edges = %v, want %v", rows, want)
	}

	h1, err := c.StoreBlob(ctx, strings.NewReader("bar"))
	if err != nil {
		t.Fatalf("StoreBlob() failed: %v", err)
	}
	h2, err := c.StoreBlob(ctx, strings.NewReader("bar"))
	if err != nil {
		t.Fatalf("StoreBlob() failed: %v", err)
	}
	if h1 != h2 {
		t.Errorf("hashes differ: %s vs %s", h1, h2)
	}
}
