package domain

// KeyPrefix namespaces every key this service writes to the shared Redis.
const KeyPrefix = "schemematch:"
