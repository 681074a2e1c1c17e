// Structure of User Model in Welzyne.

package entity

// Roles assignable to an user account.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
	RoleGuest = "guest"
)

// Account statuses toggled by admins from the dashboard.
const (
	StatusActive   = "Active"
	StatusInactive = "Inactive"
)

// Saved in DB as user:<id>
type User struct {
	ID       string `json:"_id" redis:"id" valid:"-"`
	Username string `json:"username" redis:"username" valid:"required,type(string),printableascii,stringlength(5|20),nospace~username:No spaces allowed here"`
	Email    string `json:"email" redis:"email" valid:"required,email~email:Couldn't validate Email"`
	Phone    string `json:"phone,omitempty" redis:"phone" valid:"mpesanumber~phone:Couldn't validate Phone number,optional"`
	Password string `json:"password,omitempty" redis:"password" valid:"required,type(string),minstringlength(5),pwdstrength~password:At least 1 letter and 1 number is mandatory"`
	Role     string `json:"role" redis:"role" valid:"in(admin|user|guest)~role:Unknown role,optional"`
	Status   string `json:"status" redis:"status" valid:"in(Active|Inactive)~status:Unknown status,optional"`
}

// Credentials received during login.
type UserLogin struct {
	Username string `json:"username" valid:"required,type(string),printableascii,stringlength(5|20),nospace~username:No spaces allowed here"`
	Password string `json:"password" valid:"required,type(string),minstringlength(5)"`
}

// CloneWithoutPassword returns a copy of the user safe to send to clients.
func (u User) CloneWithoutPassword() User {
	u.Password = ""
	return u
}
