package utils

import (
	"bufio"
	"os"
	"os/user"
	"strings"

	"github.com/go-ini/ini"
)

// Get the path to the Home Directory, irrespective of underlying operating system
func HomeDir() (string, error) {
	currentUser, err := user.Current()
	if err != nil {
		return "", err
	}
	return currentUser.HomeDir, nil
}

// Struct representing one section of a config file as a
//
//	Profile.Name
//
// and the keys and values in a map,
//
//	Profile.Map
type Profile struct {
	Name string
	Map  map[string]string
}

// Function to read an .ini file and return every section as a `Profile`
func ReadIniFile(filename string) ([]*Profile, error) {
	cfg, err := ini.Load(filename)
	if err != nil {
		return nil, err
	}

	var profiles []*Profile
	for _, section := range cfg.Sections() {
		sectionMap := make(map[string]string)
		for _, key := range section.Keys() {
			sectionMap[key.Name()] = key.String()
		}
		profiles = append(profiles, &Profile{
			Name: section.Name(),
			Map:  sectionMap,
		})
	}
	return profiles, nil
}

// Function to read a .env file and return a `Profile`
func ReadEnvFile(filename string) (*Profile, error) {
	profile := Profile{
		Name: "default",
		Map:  make(map[string]string),
	}

	file, err := os.Open(filename)
	if err != nil {
		return &profile, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		parts := strings.SplitN(line, "=", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])
			profile.Map[key] = value
		}
	}
	return &profile, scanner.Err()
}
