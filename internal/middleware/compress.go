// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
)

// DefaultCompressMinSize is the smallest response body worth compressing.
const DefaultCompressMinSize = 1024

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(io.Discard)
	},
}

// CompressJSON gzips JSON response bodies of at least minSize bytes for
// clients that accept gzip. Other responses pass through unchanged.
func CompressJSON(minSize int) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
				next.ServeHTTP(w, r)
				return
			}

			bw := &bufferedWriter{ResponseWriter: w, minSize: minSize}
			next.ServeHTTP(bw, r)
			bw.finish()
		})
	}
}

// bufferedWriter holds the response until the handler returns, then decides
// whether to compress it.
type bufferedWriter struct {
	http.ResponseWriter
	minSize    int
	buf        bytes.Buffer
	statusCode int
}

func (bw *bufferedWriter) WriteHeader(statusCode int) {
	if bw.statusCode == 0 {
		bw.statusCode = statusCode
	}
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	return bw.buf.Write(b)
}

func (bw *bufferedWriter) finish() {
	h := bw.Header()
	h.Add("Vary", "Accept-Encoding")

	compress := bw.buf.Len() >= bw.minSize && isJSON(h.Get("Content-Type")) && h.Get("Content-Encoding") == ""
	if compress {
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
	}
	if bw.statusCode != 0 {
		bw.ResponseWriter.WriteHeader(bw.statusCode)
	}
	if bw.buf.Len() == 0 {
		return
	}

	if !compress {
		_, _ = bw.ResponseWriter.Write(bw.buf.Bytes())
		return
	}
	gz := gzipWriterPool.Get().(*gzip.Writer)
	gz.Reset(bw.ResponseWriter)
	_, _ = gz.Write(bw.buf.Bytes())
	_ = gz.Close()
	gzipWriterPool.Put(gz)
}

func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}
