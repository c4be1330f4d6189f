package apiv1

import (
	"time"

	"cledumemoire/internal/domain/model"
	"cledumemoire/internal/usecase"
)

// JSON shapes of the API. Domain types carry no tags; these do.

type User struct {
	ID         string     `json:"id"`
	Email      string     `json:"email"`
	FirstName  string     `json:"firstName"`
	LastName   string     `json:"lastName"`
	Phone      string     `json:"phone,omitempty"`
	Role       model.Role `json:"role"`
	AvatarURL  string     `json:"avatar,omitempty"`
	University string     `json:"university,omitempty"`
	Field      string     `json:"field,omitempty"`
	Level      string     `json:"level,omitempty"`
	IsActive   bool       `json:"isActive"`
	CreatedAt  time.Time  `json:"createdAt"`
}

func toUser(u *model.User) *User {
	if u == nil {
		return nil
	}
	return &User{
		ID:         u.ID,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		Phone:      u.Phone,
		Role:       u.Role,
		AvatarURL:  u.AvatarURL,
		University: u.University,
		Field:      u.Field,
		Level:      u.Level,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

func toUsers(list []*model.User) []*User {
	out := make([]*User, 0, len(list))
	for _, u := range list {
		out = append(out, toUser(u))
	}
	return out
}

type AuthResponse struct {
	User         *User     `json:"user"`
	Token        string    `json:"token"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

func toAuth(res *usecase.AuthResult) AuthResponse {
	out := AuthResponse{User: toUser(res.User)}
	if t := res.Tokens; t != nil {
		out.Token, out.RefreshToken, out.ExpiresAt = t.AccessToken, t.RefreshToken, t.AccessExpiresAt
	}
	return out
}

type Pack struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	Price        int64     `json:"price"`
	Installment1 *int64    `json:"installment1,omitempty"`
	Installment2 *int64    `json:"installment2,omitempty"`
	Features     []string  `json:"features"`
	IsActive     bool      `json:"isActive"`
	SortOrder    int       `json:"order"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toPack(p *model.Pack) *Pack {
	if p == nil {
		return nil
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}
	return &Pack{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		Price:        p.Price,
		Installment1: p.Installment1,
		Installment2: p.Installment2,
		Features:     features,
		IsActive:     p.IsActive,
		SortOrder:    p.SortOrder,
		CreatedAt:    p.CreatedAt,
	}
}

type Payment struct {
	ID             string              `json:"id"`
	SubscriptionID string              `json:"subscriptionId"`
	Amount         int64               `json:"amount"`
	Method         string              `json:"method"`
	Reference      *string             `json:"reference,omitempty"`
	Status         model.PaymentStatus `json:"status"`
	CreatedAt      time.Time           `json:"createdAt"`
}

func toPayment(p *model.Payment) *Payment {
	return &Payment{
		ID:             p.ID,
		SubscriptionID: p.SubscriptionID,
		Amount:         p.Amount,
		Method:         p.Method,
		Reference:      p.Reference,
		Status:         p.Status,
		CreatedAt:      p.CreatedAt,
	}
}

type Subscription struct {
	ID          string                   `json:"id"`
	UserID      string                   `json:"userId"`
	PackID      string                   `json:"packId"`
	Status      model.SubscriptionStatus `json:"status"`
	AmountPaid  int64                    `json:"amountPaid"`
	ActivatedAt *time.Time               `json:"activatedAt,omitempty"`
	CreatedAt   time.Time                `json:"createdAt"`
	UpdatedAt   time.Time                `json:"updatedAt"`
	Pack        *Pack                    `json:"pack,omitempty"`
	Payments    []*Payment               `json:"payments"`
	User        *model.UserSummary       `json:"user,omitempty"`
}

func toSubscription(v *model.SubscriptionView) *Subscription {
	if v == nil || v.Subscription == nil {
		return nil
	}
	s := v.Subscription
	out := &Subscription{
		ID:          s.ID,
		UserID:      s.UserID,
		PackID:      s.PackID,
		Status:      s.Status,
		AmountPaid:  s.AmountPaid,
		ActivatedAt: s.ActivatedAt,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
		Pack:        toPack(v.Pack),
		Payments:    make([]*Payment, 0, len(v.Payments)),
		User:        v.User,
	}
	for _, p := range v.Payments {
		out.Payments = append(out.Payments, toPayment(p))
	}
	return out
}

func toSubscriptions(list []*model.SubscriptionView) []*Subscription {
	out := make([]*Subscription, 0, len(list))
	for _, v := range list {
		out = append(out, toSubscription(v))
	}
	return out
}

type Memoire struct {
	ID          string              `json:"id"`
	StudentID   string              `json:"studentId"`
	CoachID     *string             `json:"accompagnateurId,omitempty"`
	Title       string              `json:"title"`
	Description string              `json:"description,omitempty"`
	Status      model.MemoireStatus `json:"status"`
	Progress    int                 `json:"progress"`
	CurrentStep string              `json:"currentStep,omitempty"`
	DueDate     *time.Time          `json:"dueDate,omitempty"`
	UpdatedAt   time.Time           `json:"updatedAt"`
	Student     *model.UserSummary  `json:"student,omitempty"`
	Coach       *model.UserSummary  `json:"accompagnateur,omitempty"`
}

func toMemoire(v *model.MemoireView) *Memoire {
	if v == nil || v.Memoire == nil {
		return nil
	}
	m := v.Memoire
	return &Memoire{
		ID:          m.ID,
		StudentID:   m.StudentID,
		CoachID:     m.CoachID,
		Title:       m.Title,
		Description: m.Description,
		Status:      m.Status,
		Progress:    m.Progress,
		CurrentStep: m.CurrentStep,
		DueDate:     m.DueDate,
		UpdatedAt:   m.UpdatedAt,
		Student:     v.Student,
		Coach:       v.Coach,
	}
}

type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversationId"`
	SenderID       string    `json:"senderId"`
	Content        string    `json:"content"`
	IsRead         bool      `json:"isRead"`
	CreatedAt      time.Time `json:"createdAt"`
}

func toMessage(m *model.Message) *Message {
	if m == nil {
		return nil
	}
	return &Message{
		ID:             m.ID,
		ConversationID: m.ConversationID,
		SenderID:       m.SenderID,
		Content:        m.Content,
		IsRead:         m.IsRead,
		CreatedAt:      m.CreatedAt,
	}
}

type Conversation struct {
	ID            string             `json:"id"`
	LastMessageAt time.Time          `json:"lastMessageAt"`
	Partner       *model.UserSummary `json:"partner,omitempty"`
	LastMessage   *Message           `json:"lastMessage,omitempty"`
	UnreadCount   int                `json:"unreadCount"`
}

func toConversation(v *model.ConversationView) *Conversation {
	return &Conversation{
		ID:            v.ID,
		LastMessageAt: v.LastMessageAt,
		Partner:       v.Partner,
		LastMessage:   toMessage(v.LastMessage),
		UnreadCount:   v.UnreadCount,
	}
}

type Notification struct {
	ID        string                 `json:"id"`
	Type      model.NotificationType `json:"type"`
	Title     string                 `json:"title"`
	Body      string                 `json:"message,omitempty"`
	Link      string                 `json:"link,omitempty"`
	IsRead    bool                   `json:"isRead"`
	CreatedAt time.Time              `json:"createdAt"`
}

func toNotification(n *model.Notification) *Notification {
	return &Notification{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Body:      n.Body,
		Link:      n.Link,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
}

type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	StartsAt    time.Time  `json:"startDate"`
	EndsAt      *time.Time `json:"endDate,omitempty"`
	Type        string     `json:"type"`
	IsDone      bool       `json:"isDone"`
	CreatedAt   time.Time  `json:"createdAt"`
}

func toEvent(e *model.Event) *Event {
	if e == nil {
		return nil
	}
	return &Event{
		ID:          e.ID,
		Title:       e.Title,
		Description: e.Description,
		StartsAt:    e.StartsAt,
		EndsAt:      e.EndsAt,
		Type:        e.Type,
		IsDone:      e.IsDone,
		CreatedAt:   e.CreatedAt,
	}
}

type Document struct {
	ID         string               `json:"id"`
	MemoireID  string               `json:"memoireId"`
	UploaderID string               `json:"uploaderId"`
	Name       string               `json:"name"`
	URL        string               `json:"url"`
	MimeType   string               `json:"mimeType,omitempty"`
	Size       int64                `json:"size"`
	Category   string               `json:"category"`
	Version    int                  `json:"version"`
	Status     model.DocumentStatus `json:"status"`
	Feedback   string               `json:"feedback,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
}

func toDocument(d *model.Document) *Document {
	return &Document{
		ID:         d.ID,
		MemoireID:  d.MemoireID,
		UploaderID: d.UploaderID,
		Name:       d.Name,
		URL:        d.URL,
		MimeType:   d.MimeType,
		Size:       d.Size,
		Category:   d.Category,
		Version:    d.Version,
		Status:     d.Status,
		Feedback:   d.Feedback,
		CreatedAt:  d.CreatedAt,
	}
}

type Resource struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Category    string         `json:"category"`
	FileType    model.FileType `json:"fileType"`
	URL         string         `json:"url"`
	CreatedAt   time.Time      `json:"createdAt"`
}

func toResource(r *model.Resource) *Resource {
	return &Resource{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		FileType:    r.FileType,
		URL:         r.URL,
		CreatedAt:   r.CreatedAt,
	}
}

type ActivityLog struct {
	ID        string               `json:"id"`
	Action    model.ActivityAction `json:"action"`
	Details   string               `json:"details,omitempty"`
	IP        string               `json:"ip,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
	User      *model.UserSummary   `json:"user,omitempty"`
}

func toActivityLogs(list []*model.ActivityLogView) []*ActivityLog {
	out := make([]*ActivityLog, 0, len(list))
	for _, v := range list {
		out = append(out, &ActivityLog{
			ID:        v.ID,
			Action:    v.Action,
			Details:   v.Details,
			IP:        v.IP,
			CreatedAt: v.CreatedAt,
			User:      v.User,
		})
	}
	return out
}

type Correction struct {
	Original    string `json:"original"`
	Corrected   string `json:"corrected"`
	InputTokens int    `json:"inputTokens"`
	Usage       Usage  `json:"usage"`
}

type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

func toCorrection(res *usecase.CorrectionResult) Correction {
	return Correction{
		Original:    res.Original,
		Corrected:   res.Corrected,
		InputTokens: res.InputTokens,
		Usage: Usage{
			PromptTokens:     res.Usage.PromptTokens,
			CompletionTokens: res.Usage.CompletionTokens,
			TotalTokens:      res.Usage.TotalTokens,
		},
	}
}

func mapSlice[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
