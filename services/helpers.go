package services

import "time"

const dateLayout = "2006-01-02"

// CalculateAge возвращает полные годы на дату today по правилу «был ли уже
// день рождения в этом году». Nil на входе даёт nil на выходе: рейтинг не
// падает из-за отсутствующей даты рождения.
func CalculateAge(birthdate *time.Time, today time.Time) *int {
	if birthdate == nil {
		return nil
	}
	age := today.Year() - birthdate.Year()
	if monthDayBefore(today, *birthdate) {
		age--
	}
	return &age
}

// monthDayBefore reports whether today's (month, day) precedes the birthday's.
func monthDayBefore(today, birth time.Time) bool {
	if today.Month() != birth.Month() {
		return today.Month() < birth.Month()
	}
	return today.Day() < birth.Day()
}

// subtractYears сдвигает дату на years лет назад. 29 февраля в невисокосном
// году превращается в 28 февраля.
func subtractYears(dt time.Time, years int) time.Time {
	year := dt.Year() - years
	month := dt.Month()
	day := dt.Day()
	if month == time.February && day == 29 && !isLeapYear(year) {
		day = 28
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func parseDate(value string) (time.Time, error) {
	parsed, err := time.Parse(dateLayout, value)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return parsed, nil
}

func parseOptionalDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	parsed, err := parseDate(*value)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
