package models

// Response shapes for the analytics endpoints. Unique-user counts are
// distinct IP addresses, an approximation rather than real identities.

type DateClicks struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type OSStat struct {
	OSName       string `json:"osName"`
	UniqueClicks int    `json:"uniqueClicks"`
	UniqueUsers  int    `json:"uniqueUsers"`
}

type DeviceStat struct {
	DeviceName   string `json:"deviceName"`
	UniqueClicks int    `json:"uniqueClicks"`
	UniqueUsers  int    `json:"uniqueUsers"`
}

type URLAnalytics struct {
	TotalClicks  int          `json:"totalClicks"`
	UniqueUsers  int          `json:"uniqueUsers"`
	ClicksByDate []DateClicks `json:"clicksByDate"`
	OSType       []OSStat     `json:"osType"`
	DeviceType   []DeviceStat `json:"deviceType"`
}

type TopicURLStats struct {
	ShortURL    string `json:"shortUrl"`
	TotalClicks int    `json:"totalClicks"`
	UniqueUsers int    `json:"uniqueUsers"`
}

type TopicAnalytics struct {
	TotalClicks  int             `json:"totalClicks"`
	UniqueUsers  int             `json:"uniqueUsers"`
	ClicksByDate []DateClicks    `json:"clicksByDate"`
	URLs         []TopicURLStats `json:"urls"`
}

type OverallAnalytics struct {
	TotalURLs    int          `json:"totalUrls"`
	TotalClicks  int          `json:"totalClicks"`
	UniqueUsers  int          `json:"uniqueUsers"`
	ClicksByDate []DateClicks `json:"clicksByDate"`
	OSType       []OSStat     `json:"osType"`
	DeviceType   []DeviceStat `json:"deviceType"`
}
