// Package auditpublisher forwards committed audit entries to a RabbitMQ topic exchange.
//
// Every entry is published to the exchange "rental.audit" with the routing key
// "rental.<event type in lower case>", for example "rental.reserve" or
// "rental.demand_signal". Consumers bind to "rental.#" for the full stream.
// The engines call the publisher after commit; a failed publish is logged by
// the engine and never undoes a transition.
package auditpublisher
