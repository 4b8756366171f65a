package models

// EventKind 入站事件类型
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventBegin
	EventSelection
	EventText
	EventCancel
	EventRetry
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventBegin:
		return "begin"
	case EventSelection:
		return "select"
	case EventText:
		return "text"
	case EventCancel:
		return "cancel"
	case EventRetry:
		return "retry"
	}
	return "unknown"
}

// Category 菜单类别，选择事件必须与当前步骤的类别一致
type Category string

const (
	CategoryUnit   Category = "unit"
	CategoryMonth  Category = "month"
	CategoryDay    Category = "day"
	CategoryHour   Category = "hour"
	CategoryMinute Category = "minute"
)

// Selection 已解码的菜单选择
type Selection struct {
	Category Category
	Value    int
}

// Event 传输层解码后的入站事件，仅与 Kind 对应的字段有意义
type Event struct {
	Kind      EventKind
	UserID    UserID
	Selection Selection
	Text      string
}

func Start(userID UserID) Event { return Event{Kind: EventStart, UserID: userID} }

func BeginRequested(userID UserID) Event { return Event{Kind: EventBegin, UserID: userID} }

func MenuSelection(userID UserID, category Category, value int) Event {
	return Event{Kind: EventSelection, UserID: userID, Selection: Selection{Category: category, Value: value}}
}

func TextSubmitted(userID UserID, text string) Event {
	return Event{Kind: EventText, UserID: userID, Text: text}
}

func CancelRequested(userID UserID) Event { return Event{Kind: EventCancel, UserID: userID} }

func RetryRequested(userID UserID) Event { return Event{Kind: EventRetry, UserID: userID} }

// Action 确认消息附带的可触发操作（按钮）
type Action struct {
	Label   string    `json:"label"`
	Trigger EventKind `json:"-"`
}
