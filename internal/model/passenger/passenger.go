package passenger

// Passenger is one row of the Titanic manifest. Age and Fare are nil when the
// source cell is blank; Embarked is empty when the port is unknown.
type Passenger struct {
	ID       int      `json:"passengerId"`
	Survived bool     `json:"survived"`
	Pclass   int      `json:"pclass"`
	Name     string   `json:"name"`
	Sex      string   `json:"sex"`
	Age      *float64 `json:"age,omitempty"`
	SibSp    int      `json:"sibSp"`
	Parch    int      `json:"parch"`
	Ticket   string   `json:"ticket"`
	Fare     *float64 `json:"fare,omitempty"`
	Cabin    string   `json:"cabin,omitempty"`
	Embarked string   `json:"embarked,omitempty"`
}

// HasAge reports whether the age cell was present.
func (p Passenger) HasAge() bool { return p.Age != nil }

// HasFare reports whether the fare cell was present.
func (p Passenger) HasFare() bool { return p.Fare != nil }
