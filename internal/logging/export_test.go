package logging

var SetupWriter = setup
