package paygate

import "context"

// SendOTP asks the backend to text a one-time code to phone.
func (c *Client) SendOTP(ctx context.Context, phone string) Result[Ack] {
	return Decode[Ack](c.Post(ctx, "/api/auth/send-otp", map[string]string{"phone": phone}, nil))
}

// VerifyOTP exchanges a phone code for a session.
func (c *Client) VerifyOTP(ctx context.Context, phone, otp string) Result[AuthGrant] {
	return Decode[AuthGrant](c.Post(ctx, "/api/auth/verify-otp", map[string]string{"phone": phone, "otp": otp}, nil))
}

// SendEmailOTP asks the backend to email a one-time code.
func (c *Client) SendEmailOTP(ctx context.Context, email string) Result[Ack] {
	return Decode[Ack](c.Post(ctx, "/api/auth/send-email-otp", map[string]string{"email": email}, nil))
}

// VerifyEmailOTP exchanges an email code for a session.
func (c *Client) VerifyEmailOTP(ctx context.Context, email, otp string) Result[AuthGrant] {
	return Decode[AuthGrant](c.Post(ctx, "/api/auth/verify-email-otp", map[string]string{"email": email, "otp": otp}, nil))
}

// Register creates a password account and returns its session.
func (c *Client) Register(ctx context.Context, email, password string) Result[AuthGrant] {
	return Decode[AuthGrant](c.Post(ctx, "/api/auth/register", map[string]string{"email": email, "password": password}, nil))
}

// Login authenticates with email and password.
func (c *Client) Login(ctx context.Context, email, password string) Result[AuthGrant] {
	return Decode[AuthGrant](c.Post(ctx, "/api/auth/login", map[string]string{"email": email, "password": password}, nil))
}
