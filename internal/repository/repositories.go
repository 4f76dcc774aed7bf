package repository

type Repositories struct {
	Store Store

	MemberRepo       MemberRepository
	EventRepo        EventRepository
	RegistrationRepo RegistrationRepository
	MinutesRepo      MinutesRepository
}

func NewRepositories(store Store) *Repositories {
	return &Repositories{
		Store: store,

		MemberRepo:       NewMemberRepository(store),
		EventRepo:        NewEventRepository(store),
		RegistrationRepo: NewRegistrationRepository(store),
		MinutesRepo:      NewMinutesRepository(store),
	}
}
