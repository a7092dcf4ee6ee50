package eventbus

// Topics used across binaries.

var (
	// TopicProductIngest carries ingest requests and their outcomes.
	TopicProductIngest = NewTopic("nutri-lens.product.ingest")
)

var AllTopics = []Topic{
	TopicProductIngest,
}
