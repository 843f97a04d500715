package users

// Mapping between wire shapes and the stored entity. These functions are pure;
// password hashing stays in the service.

// ToResponse converts a user entity to its wire shape, dropping the password hash
func ToResponse(user *User) *UserResponse {
	if user == nil {
		return nil
	}
	return &UserResponse{
		ID:          user.ID,
		Username:    user.Username,
		Email:       user.Email,
		PhoneNumber: user.PhoneNumber,
		Role:        user.Role,
		Status:      user.Status,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}

// ToResponses converts a list of user entities
func ToResponses(list []*User) []*UserResponse {
	out := make([]*UserResponse, len(list))
	for i, u := range list {
		out[i] = ToResponse(u)
	}
	return out
}

// NewUserFromRequest builds a user entity from a create request. The password
// hash is left empty for the service to fill in; new accounts start ACTIVE.
func NewUserFromRequest(req *CreateUserRequest) *User {
	if req == nil {
		return nil
	}
	return &User{
		Username:    req.Username,
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Role:        req.Role,
		Status:      StatusActive,
	}
}

// ApplyUpdate copies the present fields of a partial update onto a user
// entity. Absent fields mean "do not touch", not "clear". The password is
// applied by the service after hashing.
func ApplyUpdate(req *UpdateUserRequest, user *User) {
	if req == nil || user == nil {
		return
	}
	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.PhoneNumber != nil {
		user.PhoneNumber = req.PhoneNumber
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}
}
