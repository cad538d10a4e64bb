// Package server runs the short-lived loopback listener that receives the authorization callback.
//
// # Callback Flow
//
// Spotify redirects the browser to the configured redirect URI with the access token in the URL
// fragment. Browsers never send fragments to servers, so [CallbackHandler] serves a small page at
// the callback path whose script POSTs location.hash to /token and then strips the fragment from
// the address bar with history.replaceState.
//
// The handler accepts exactly one fragment and publishes it on [CallbackHandler.Result]. Later
// posts get 409 Conflict.
//
// # Routing
//
// Routes are served by a chi router built in [NewRouter]. [Middleware] values wrap every route
// in the order given, after chi's panic recovery and request id middleware.
//
// # Lifecycle
//
// [CallbackServer] binds the redirect URI's host, serves until [CallbackServer.Wait] returns and
// is then shut down with a five second grace period.
//
// [Loopback] ties the pieces to an auth.Location: each Navigate starts a fresh listener, opens the
// browser and delivers the outcome on [Loopback.Callbacks]. When the browser cannot be opened the
// URL is handed to OnFailed so the user can visit it by hand.
package server
