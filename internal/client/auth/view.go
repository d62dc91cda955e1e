package auth

// View is the auth screen currently shown. Exactly one is active.
type View int

const (
	ViewLogin View = iota
	ViewRegister
	ViewForgot
	ViewReset
)

func (v View) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewRegister:
		return "register"
	case ViewForgot:
		return "forgot"
	case ViewReset:
		return "reset"
	}
	return "unknown"
}

// Nav is a user navigation choice between views.
type Nav int

const (
	NavRegister Nav = iota
	NavForgot
	NavBack
)

// navigation lists every navigation the views offer. A pair that is missing
// is not offered by that view.
var navigation = map[View]map[Nav]View{
	ViewLogin: {
		NavRegister: ViewRegister,
		NavForgot:   ViewForgot,
		NavBack:     ViewLogin,
	},
	ViewRegister: {
		NavBack: ViewLogin,
	},
	ViewForgot: {
		NavBack: ViewLogin,
	},
	ViewReset: {
		NavBack: ViewLogin,
	},
}
