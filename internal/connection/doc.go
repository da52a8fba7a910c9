// package connection talks to the Brightcove Media API.
//
// Reads are GET requests against the read endpoint carrying a command name and a
// read token. Writes are form POSTs to the write endpoint whose json field holds
// a {"method", "params"} envelope. Both return raw JSON that callers decode into
// their own types.
package connection
