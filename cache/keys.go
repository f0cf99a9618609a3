package cache

import "fmt"

// Key namespaces. The owner id is the last segment so all of a user's
// topic entries can be matched with a single pattern.

func URLKey(alias string) string {
	return "url:" + alias
}

func AnalyticsKey(alias string, userID uint) string {
	return fmt.Sprintf("analytics:%s:%d", alias, userID)
}

func TopicKey(topic string, userID uint) string {
	return fmt.Sprintf("topic:%s:%d", topic, userID)
}

func TopicPattern(userID uint) string {
	return fmt.Sprintf("topic:*:%d", userID)
}

func OverallKey(userID uint) string {
	return fmt.Sprintf("overall:%d", userID)
}
