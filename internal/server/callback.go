package server

import (
	"html/template"
	"io"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
)

// TokenPath receives the fragment posted by the callback page.
const TokenPath = "/token"

const maxFragmentBytes = 8 << 10

var callbackPage = template.Must(template.New("callback").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>Sonorous</title>
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
               display: flex; align-items: center; justify-content: center; height: 100vh;
               margin: 0; background: #0f0a1e; color: #e9e4ff; }
        .container { text-align: center; padding: 2rem; border-radius: 8px; background: #1c1433; }
        h1 { color: #c4a7ff; margin: 0 0 1rem 0; }
        p { color: #a59ccf; margin: 0; }
    </style>
</head>
<body>
    <div class="container">
        <h1 id="title">Connecting to the stars...</h1>
        <p id="message">One moment.</p>
    </div>
    <script>
        (function () {
            var fragment = window.location.hash.substring(1);
            history.replaceState(null, "", window.location.pathname + window.location.search);
            fetch({{.TokenPath}}, { method: "POST", headers: { "Content-Type": "text/plain" }, body: fragment })
                .then(function (res) {
                    if (!res.ok) { throw new Error(res.statusText); }
                    document.getElementById("title").textContent = "Authorization received";
                    document.getElementById("message").textContent = "You can close this window and return to the terminal.";
                })
                .catch(function () {
                    document.getElementById("title").textContent = "Something went wrong";
                    document.getElementById("message").textContent = "Return to the terminal and try again.";
                });
        })();
    </script>
</body>
</html>
`))

// CallbackHandler serves the callback page and collects the posted fragment once.
//
// Implements the [Handler] interface.
type CallbackHandler struct {
	callbackPath string
	mux          chi.Router
	result       chan string
	once         sync.Once

	mu       sync.Mutex
	fragment string
}

// NewCallbackHandler creates a handler serving the page at callbackPath (the redirect URI's path).
func NewCallbackHandler(callbackPath string) *CallbackHandler {
	if callbackPath == "" {
		callbackPath = "/"
	}

	h := &CallbackHandler{
		callbackPath: callbackPath,
		result:       make(chan string, 1),
	}

	mux := chi.NewRouter()
	mux.Get(callbackPath, h.page)
	mux.Post(TokenPath, h.token)
	h.mux = mux
	return h
}

// Routes returns the callback path and [TokenPath].
func (h *CallbackHandler) Routes() []string {
	return []string{h.callbackPath, TokenPath}
}

func (h *CallbackHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *CallbackHandler) page(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Referrer-Policy", "no-referrer")

	if err := callbackPage.Execute(w, struct{ TokenPath string }{TokenPath}); err != nil {
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
	}
}

func (h *CallbackHandler) token(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxFragmentBytes))
	if err != nil {
		http.Error(w, "Invalid callback", http.StatusBadRequest)
		return
	}

	if !h.Send(string(body)) {
		http.Error(w, "Callback already processed", http.StatusConflict)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Send publishes fragment if nothing has been published yet and reports whether it did.
func (h *CallbackHandler) Send(fragment string) bool {
	sent := false
	h.once.Do(func() {
		h.mu.Lock()
		h.fragment = fragment
		h.mu.Unlock()

		h.result <- fragment
		close(h.result)
		sent = true
	})
	return sent
}

// Result delivers exactly one fragment and is then closed.
func (h *CallbackHandler) Result() <-chan string {
	return h.result
}

// Fragment returns the received fragment until it is cleared.
func (h *CallbackHandler) Fragment() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.fragment
}

// ClearFragment forgets the received fragment. Later callbacks stay rejected.
func (h *CallbackHandler) ClearFragment() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.fragment = ""
	return nil
}
