// Package kvstore provides the key-value capability the experience widgets
// persist their state through.
//
// Values are opaque bytes. Most callers store JSON through the LoadJSON and
// SaveJSON helpers:
//
//	var items []string
//	found, err := kvstore.LoadJSON(ctx, store, "registry", &items)
//	if err != nil {
//		return err
//	}
//	if !found {
//		items = seed()
//	}
//	return kvstore.SaveJSON(ctx, store, "registry", items)
package kvstore
