package events

// BasketCheckedOutQueue is the well-known checkout queue. Events are
// published straight to it on the default exchange; there is no
// topic fan-out in this flow.
const BasketCheckedOutQueue = "basket.checkedout"

const contentTypeJSON = "application/json"
