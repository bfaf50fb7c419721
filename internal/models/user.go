package models

// User is the signed-in person. Its lifecycle is owned by the auth service;
// the session manager only uses ID as the actor of outgoing messages.
type User struct {
	ID      string `json:"id" yaml:"id"`
	Name    string `json:"name" yaml:"name"`
	Email   string `json:"email" yaml:"email"`
	Company string `json:"company,omitempty" yaml:"company,omitempty"`
}

// DisplayName renders the user as shown in the chat header.
func (u *User) DisplayName() string {
	if u == nil {
		return "Guest User"
	}
	company := u.Company
	if company == "" {
		company = "Individual"
	}
	return u.Name + " (" + company + ")"
}

// SignupInput is the payload for creating a CRM user.
type SignupInput struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Company     string `json:"company,omitempty"`
	Preferences string `json:"preferences,omitempty"`
}

// UserUpdate changes a CRM user's profile. Nil fields are left as they are.
type UserUpdate struct {
	Name        *string `json:"name,omitempty"`
	Email       *string `json:"email,omitempty"`
	Company     *string `json:"company,omitempty"`
	Preferences *string `json:"preferences,omitempty"`
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.Email == nil && u.Company == nil && u.Preferences == nil
}
