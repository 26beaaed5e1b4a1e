package cartcache

import "fmt"

// Cache keys are colon-joined and deterministic so that every code path that
// touches a user's cart evicts the exact same entries.
//
//	cart:<userID>:count        distinct line count
//	cart:<userID>:qty          quantity sum
//	cart:<userID>:total        monetary total in cents
//	cart:<userID>:line:<productID>  per-line lookup

func countKey(userID string) string {
	return fmt.Sprintf("cart:%s:count", userID)
}

func quantityKey(userID string) string {
	return fmt.Sprintf("cart:%s:qty", userID)
}

func totalKey(userID string) string {
	return fmt.Sprintf("cart:%s:total", userID)
}

func lineKey(userID, productID string) string {
	return fmt.Sprintf("cart:%s:line:%s", userID, productID)
}

func linePrefix(userID string) string {
	return fmt.Sprintf("cart:%s:line:", userID)
}
