// Package repository implements the cache-aside user repository.
//
// Reads check the cache first and fill it from the store on a miss.
// Writes hit the store first and then invalidate:
//
//   - Save deletes the collection key
//   - Update deletes the entity key, then the collection key
//   - Delete removes both keys in one pipelined call, after the
//     statement completes and whether or not a row matched
//
// A read that overlaps a write can put pre-write data back into the
// cache. That entry lives at most one TTL.
package repository
