// Package dispatch models the ephemeral side of delivery dispatch: the offers a
// broadcast hands out to delivery partners and the broadcast batch they belong to.
//
// Offers live outside the order aggregate. The order row stays the source of truth
// for who won; offers only answer "was this partner invited, and is the invitation
// still open".
package dispatch
