package dto

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
	Role      string      `json:"role"`
	User      interface{} `json:"user"`
}

type AdminUserResponse struct {
	Id    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type ChannelAuthRequest struct {
	SocketId    string `json:"socket_id" form:"socket_id" validate:"required"`
	ChannelName string `json:"channel_name" form:"channel_name" validate:"required"`
}

type ChannelAuthResponse struct {
	Auth string `json:"auth"`
}
