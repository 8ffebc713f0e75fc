package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"daapshare/internal/dmap"
)

func TestWriteTree(t *testing.T) {
	tree := dmap.NewContainer("mlog",
		dmap.NewInt("mstt", 200),
		dmap.NewInt("mlid", 42),
		dmap.NewString("minm", "Den"),
		dmap.NewNull("muty"),
	)
	var buf bytes.Buffer
	writeTree(&buf, dmap.DefaultRegistry(), tree, 0)
	want := strings.Join([]string{
		"mlog (dmap.loginresponse, type 12) [4]",
		"  mstt (dmap.status, type 5) = 200",
		"  mlid (dmap.sessionid, type 5) = 42",
		"  minm (dmap.itemname, type 9) = \"Den\"",
		"  muty (dmap.updatetype, type 1) <null>",
		"",
	}, "\n")
	if buf.String() != want {
		t.Fatalf("unexpected tree\n got: %q\nwant: %q", buf.String(), want)
	}
}

func TestDumpCommandDecodesResponse(t *testing.T) {
	codec := dmap.NewCodec(dmap.DefaultRegistry(), nil)
	body, err := codec.Encode(dmap.NewContainer("mupd", dmap.NewInt("mstt", 200), dmap.NewInt("musr", 2)), nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/update" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/x-dmap-tagged")
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	out, _, err := runCLI(t, []string{"dump", srv.URL + "/update"}, "")
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	requireContains(t, out, "mupd (dmap.updateresponse, type 12) [2]")
	requireContains(t, out, "musr (dmap.serverrevision, type 5) = 2")

	if _, _, err := runCLI(t, []string{"dump", srv.URL + "/missing"}, ""); err == nil {
		t.Fatal("expected error for 404 response")
	}
}
