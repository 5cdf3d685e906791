// Package signal defines the vibelink wire protocol: the category/action
// taxonomy, the typed per-category payloads, and the codec that moves
// signals to and from transport bytes.
//
// A Signal is immutable once constructed and travels exactly once; the
// protocol tolerates duplicate and out-of-order delivery instead of
// tracking it. All categories travel as structured plaintext except chat,
// whose text is sealed under the pair key before serialization.
//
// Example:
//
//	sig := signal.New("ABCD12", uid, "Alice", signal.CategoryTouch, signal.ActionData,
//	    &signal.TouchPayload{Type: signal.TouchTap, Count: 2})
//	data, err := signal.Encode(sig, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	got, err := signal.Decode(data, nil)
package signal
