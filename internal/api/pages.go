// Copyright (c) 2026 Serbbisyo. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package api

import (
	"net/http"
	"path"

	"github.com/serbbisyo/serbbisyo/internal/gate"
)

// NewPages serves the HTML pages under dir, each request passing through the
// session gate first.
func NewPages(dir string, sessionGate *gate.Gate, authenticators gate.AuthenticatorFactory) http.Handler {
	return gate.Middleware(sessionGate, authenticators)(pageServer{root: http.Dir(dir)})
}

// pageServer serves files by exact path. Unlike [http.FileServer] it never
// redirects "/index.html" to "/", which would loop with the root redirect.
type pageServer struct {
	root http.FileSystem
}

func (server pageServer) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	file, err := server.root.Open(path.Clean("/" + request.URL.Path))
	if err != nil {
		http.NotFound(writer, request)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.IsDir() {
		http.NotFound(writer, request)
		return
	}

	http.ServeContent(writer, request, info.Name(), info.ModTime(), file)
}
