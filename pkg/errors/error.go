package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"

	// ProtocolError represents an inbound message that violates the confirmation protocol.
	ProtocolError ErrorCode = "protocol_error"
	// DuplicateOrderError represents a confirmation for an order id that is already resting.
	DuplicateOrderError ErrorCode = "duplicate_order_error"
	// InsufficientAvailableError represents an intent that exceeds the available balance.
	InsufficientAvailableError ErrorCode = "insufficient_available_error"

	// FeedReadError represents an error while reading the confirmation feed.
	FeedReadError ErrorCode = "feed_read_error"
	// FeedDecodeError represents an inbound envelope that could not be decoded.
	FeedDecodeError ErrorCode = "feed_decode_error"
	// CommandPublishError represents an error while publishing an outbound command.
	CommandPublishError ErrorCode = "command_publish_error"

	// SnapshotMarshalError represents an error while encoding a session snapshot.
	SnapshotMarshalError ErrorCode = "snapshot_marshal_error"
	// SnapshotUnmarshalError represents an error while decoding a session snapshot.
	SnapshotUnmarshalError ErrorCode = "snapshot_unmarshal_error"
	// SnapshotStoreError represents an error while persisting a session snapshot.
	SnapshotStoreError ErrorCode = "snapshot_store_error"
	// SnapshotLoadError represents an error while loading a session snapshot.
	SnapshotLoadError ErrorCode = "snapshot_load_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"
	// RedisGetError represents an error when getting a value from Redis.
	RedisGetError ErrorCode = "redis_get_error"
	// RedisSetError represents an error when setting a value in Redis.
	RedisSetError ErrorCode = "redis_set_error"
	// RedisDelError represents an error when deleting a value from Redis.
	RedisDelError ErrorCode = "redis_del_error"
)
