// Automod component for durable per-user strike counts (profanity violations).
//
// Includes an interface and implementations using a JSON file on local disk (the default), redis, an SQL database (via gorm), and in-process memory.
//
// Strike counts only ever increase. There is no decrement or reset operation; an operator who wants to forgive a user edits the backing store directly.
package strikestore
