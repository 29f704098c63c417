package rest

// User is the session user returned by /api/auth/me and the login endpoint.
type User struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Nickname  string `json:"nickname"`
	Avatar    string `json:"avatar"`
	City      string `json:"city"`
	Role      string `json:"role"`
	IsBanned  bool   `json:"is_banned"`
	IsPrivate bool   `json:"is_private"`
	CreatedAt string `json:"created_at"`
}

// Notification mirrors the server's notification record.
type Notification struct {
	ID             int    `json:"id"`
	SenderID       int    `json:"sender_id"`
	SenderNickname string `json:"sender_nickname"`
	SenderAvatar   string `json:"sender_avatar,omitempty"`
	Type           string `json:"type"`
	Message        string `json:"message"`
	Seen           bool   `json:"seen"`
	CreatedAt      string `json:"created_at"`
	GroupID        int    `json:"group_id,omitempty"`
	EventID        int    `json:"event_id,omitempty"`
}

// ChatUser is one conversation partner with chat eligibility flags.
type ChatUser struct {
	ID           int    `json:"id"`
	FullName     string `json:"full_name"`
	Avatar       string `json:"avatar"`
	IsPrivate    bool   `json:"is_private"`
	FollowStatus string `json:"follow_status"`
	CanChat      bool   `json:"can_chat"`
}

// ChatMessage is one stored direct message from the history endpoint.
type ChatMessage struct {
	From      int    `json:"from"`
	To        int    `json:"to"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// BookOwner is the abbreviated owner embedded in a Book.
type BookOwner struct {
	ID        int    `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Avatar    string `json:"avatar"`
	City      string `json:"city"`
}

// Book is one listing.
type Book struct {
	ID          int       `json:"id"`
	OwnerID     int       `json:"owner_id"`
	Owner       BookOwner `json:"owner"`
	Title       string    `json:"title"`
	Author      string    `json:"author"`
	ISBN        string    `json:"isbn"`
	Description string    `json:"description"`
	Genre       string    `json:"genre"`
	Condition   string    `json:"condition"`
	City        string    `json:"city"`
	Available   bool      `json:"available"`
	Images      []string  `json:"images"`
	CreatedAt   string    `json:"created_at"`
	UpdatedAt   string    `json:"updated_at"`
}

// BookListing is the payload for creating or updating a book. Image is
// uploaded as a multipart part alongside the fields.
type BookListing struct {
	Title       string
	Author      string
	ISBN        string
	Description string
	Genre       string
	Condition   string
	City        string
	Available   bool

	// ImageName and Image hold the optional cover upload.
	ImageName string
	Image     []byte
}

// ExchangeRequest is one book exchange, from either side.
type ExchangeRequest struct {
	ID              int    `json:"id"`
	BookID          int    `json:"book_id"`
	BookTitle       string `json:"book_title"`
	BookAuthor      string `json:"book_author"`
	BookImage       string `json:"book_image"`
	OfferedBookID   int    `json:"offered_book_id"`
	OfferedTitle    string `json:"offered_title"`
	OfferedAuthor   string `json:"offered_author"`
	OfferedImage    string `json:"offered_image"`
	RequesterID     int    `json:"requester_id"`
	RequesterName   string `json:"requester_name"`
	RequesterAvatar string `json:"requester_avatar"`
	OwnerID         int    `json:"owner_id"`
	OwnerName       string `json:"owner_name"`
	OwnerAvatar     string `json:"owner_avatar"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	IsIncoming      bool   `json:"is_incoming"`
}

// Report is one moderation report, visible to admins.
type Report struct {
	ID             int    `json:"id"`
	ReporterID     int    `json:"reporter_id"`
	ReportedType   string `json:"reported_type"` // "user" | "book"
	ReportedID     int    `json:"reported_id"`
	Reason         string `json:"reason"`
	Description    string `json:"description"`
	Status         string `json:"status"` // pending | reviewed | resolved | dismissed
	AdminNotes     string `json:"admin_notes"`
	CreatedAt      string `json:"created_at"`
	ReporterName   string `json:"reporter_name"`
	ReporterAvatar string `json:"reporter_avatar"`
	ReportedName   string `json:"reported_name"`
}

// Registration is the payload for creating an account.
type Registration struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
	Nickname    string `json:"nickname"`
	About       string `json:"about"`
	City        string `json:"city"`
}
