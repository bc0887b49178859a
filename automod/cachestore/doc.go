// Caching of small string values (eg, resolved guild role and member IDs) with a fixed TTL and purging.
//
// Includes an interface and implementations using redis and in-process memory.
//
// Lookups against the chat platform API are rate-limited; moderator commands use this cache to avoid repeating them.
package cachestore
